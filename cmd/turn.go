package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/termchat/termchat/internal/budget"
	"github.com/termchat/termchat/internal/chat"
	"github.com/termchat/termchat/internal/ollama"
	"github.com/termchat/termchat/internal/signal"
	"github.com/termchat/termchat/internal/ui"
	"github.com/termchat/termchat/internal/ui/streaming"
	"github.com/termchat/termchat/internal/usage"
)

// turn runs one full exchange: append the user message, stream the
// response, and commit the assistant reply. A transport failure before
// any text arrives removes the unanswered user message so the history
// never carries a question the model never saw.
func (s *session) turn(ctx context.Context, text string) {
	s.conv.AddUser(text)
	if err := s.generate(ctx); err != nil {
		s.conv.Messages = s.conv.Messages[:len(s.conv.Messages)-1]
		s.printer.Error("%v", err)
	}
}

// generate streams a response for the current history plus any pending
// recalled pairs. The recall set is consumed whether or not the request
// succeeds.
func (s *session) generate(ctx context.Context) error {
	req := ollama.ChatRequest{
		Model:    s.model,
		Messages: s.conv.RequestMessages(s.recalls...),
		Options:  s.requestOptions(),
	}
	s.recalls = nil

	tctx, cancel := signal.Interruptible(ctx)
	defer cancel()

	stream, err := s.client.Chat(tctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Println()
	renderer := streaming.New(os.Stdout, ui.TerminalWidth(), ui.RenderMarkdown)
	text, _, runErr := renderer.Run(stream)

	var stats *chat.TurnStats
	if st, err := stream.Stats(); err == nil {
		stats = &chat.TurnStats{
			TokensGenerated: st.EvalCount,
			Duration:        st.TotalDuration,
			PromptTokens:    st.PromptEvalCount,
			TokensPerSec:    st.TokensPerSecond,
		}
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, ollama.ErrInterrupted):
		if text == "" {
			return fmt.Errorf("interrupted")
		}
		// Keep what arrived, marked so later turns know it was cut short.
		text += "\n\n[interrupted]"
		s.printer.Muted("(interrupted)")
	default:
		return runErr
	}

	s.conv.AddAssistant(text, stats)
	fmt.Println()

	if s.showStats && stats != nil {
		fmt.Println(s.printer.Styles().Stats.Render(ui.FormatTurnStats(*stats)))
	}
	s.warnBudget(stats)
	s.recordUsage(ctx, stats)
	s.autoSave()
	return nil
}

// warnBudget reports context pressure from the prompt token count the
// server evaluated for the latest turn.
func (s *session) warnBudget(stats *chat.TurnStats) {
	if stats == nil || s.contextLimit <= 0 {
		return
	}
	used := stats.PromptTokens
	switch u := budget.Classify(used, s.contextLimit); u.Tier {
	case budget.TierCritical:
		s.printer.Error("Context %.0f%% full (%d/%d tokens); /clear or /save to start fresh", u.Ratio*100, used, s.contextLimit)
	case budget.TierWarning:
		s.printer.Warn("Context %.0f%% full (%d/%d tokens)", u.Ratio*100, used, s.contextLimit)
	}
}

// recordUsage logs the turn to the usage db. Best effort; a failed write
// never disturbs the chat.
func (s *session) recordUsage(ctx context.Context, stats *chat.TurnStats) {
	if s.usageLog == nil || stats == nil {
		return
	}
	_ = s.usageLog.Record(ctx, usage.Turn{
		Model:        s.model,
		PromptTokens: stats.PromptTokens,
		EvalTokens:   stats.TokensGenerated,
		Duration:     stats.Duration,
	})
}
