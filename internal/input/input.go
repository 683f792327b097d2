// Package input wraps line editing for the REPL: history, tab
// completion for slash commands and saved conversation names, and a
// triple-quote multiline mode.
package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sahilm/fuzzy"
)

// ErrInterrupted is returned when the user aborts the prompt with Ctrl-C.
var ErrInterrupted = errors.New("input: interrupted")

const multilineDelim = `"""`

// Reader reads user input with line editing and persistent history.
type Reader struct {
	line        *liner.State
	historyPath string

	commands []string
	names    func() []string
}

// New creates a Reader. commands is the list of slash commands offered
// for completion; names supplies saved conversation names for
// completing the argument of /load and /cat, and may be nil.
func New(historyPath string, commands []string, names func() []string) *Reader {
	r := &Reader{
		line:        liner.NewLiner(),
		historyPath: historyPath,
		commands:    commands,
		names:       names,
	}
	r.line.SetCtrlCAborts(true)
	r.line.SetCompleter(r.complete)
	if historyPath != "" {
		os.MkdirAll(filepath.Dir(historyPath), 0o755)
		if f, err := os.Open(historyPath); err == nil {
			r.line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

// Read prompts for one logical input. A line that begins with """
// switches to multiline mode: subsequent lines are collected until a
// line equal to """ ends the block.
func (r *Reader) Read(prompt string) (string, error) {
	text, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}

	if strings.HasPrefix(text, multilineDelim) {
		text, err = r.readMultiline(strings.TrimPrefix(text, multilineDelim))
		if err != nil {
			return "", err
		}
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		r.line.AppendHistory(trimmed)
	}
	return text, nil
}

func (r *Reader) readMultiline(first string) (string, error) {
	var lines []string
	if first != "" {
		lines = append(lines, first)
	}
	for {
		l, err := r.line.Prompt("... ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return "", ErrInterrupted
			}
			return "", err
		}
		if strings.TrimSpace(l) == multilineDelim {
			break
		}
		lines = append(lines, l)
	}
	return strings.Join(lines, "\n"), nil
}

// Close persists history and restores the terminal.
func (r *Reader) Close() error {
	if r.historyPath != "" {
		if f, err := os.Create(r.historyPath); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	return r.line.Close()
}

func (r *Reader) complete(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}

	// Complete conversation names after commands that take one.
	for _, cmd := range []string{"/load ", "/cat "} {
		if strings.HasPrefix(line, cmd) {
			if r.names == nil {
				return nil
			}
			return completeArg(cmd, line[len(cmd):], r.names())
		}
	}

	var out []string
	for _, c := range r.commands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

func completeArg(cmd, partial string, candidates []string) []string {
	if partial == "" {
		out := make([]string, len(candidates))
		for i, c := range candidates {
			out[i] = cmd + c
		}
		return out
	}
	var out []string
	for _, m := range fuzzy.Find(partial, candidates) {
		out = append(out, cmd+m.Str)
	}
	return out
}
