package ui

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// TerminalWidth returns the current width of stdout, or 80 when stdout
// is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w < 1 {
		return defaultWidth
	}
	return w
}
