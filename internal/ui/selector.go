package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/termchat/termchat/internal/ollama"
)

// getTTY opens /dev/tty for direct terminal access (bypasses redirections)
func getTTY() (*os.File, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}

// SelectModel presents an interactive picker over the installed models
// and returns the chosen model name.
func SelectModel(models []ollama.Model, current string) (string, error) {
	if len(models) == 0 {
		return "", fmt.Errorf("no models installed")
	}

	options := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		label := m.Name
		if m.Name == current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, m.Name))
	}

	selected := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a model").
				Options(options...).
				Value(&selected),
		),
	)

	// Use /dev/tty directly to bypass shell redirections
	if tty, err := getTTY(); err == nil {
		defer tty.Close()
		form = form.WithInput(tty).WithOutput(tty)
	}

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}
