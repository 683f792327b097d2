package ui

import (
	"fmt"

	"github.com/termchat/termchat/internal/chat"
)

// FormatTurnStats renders per-turn generation stats as a compact
// single-line string.
func FormatTurnStats(s chat.TurnStats) string {
	return fmt.Sprintf("Stats: %.1fs | %s prompt | %s generated | %.1f tok/s",
		s.Duration.Seconds(),
		formatTokenCount(s.PromptTokens),
		formatTokenCount(s.TokensGenerated),
		s.TokensPerSec)
}

// formatTokenCount formats a token count compactly (1234 -> "1.2k").
func formatTokenCount(n int) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}
