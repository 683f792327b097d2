package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/termchat/termchat/internal/chat"
	"github.com/termchat/termchat/internal/ui"
)

func testSession() *session {
	return &session{
		printer: ui.NewPrinter(),
		conv:    chat.New(""),
	}
}

func TestCmdStats_TogglesDisplay(t *testing.T) {
	s := testSession()
	if s.showStats {
		t.Fatal("stats display starts on, want off")
	}

	s.cmdStats()
	if !s.showStats {
		t.Error("first /stats left display off, want on")
	}

	s.cmdStats()
	if s.showStats {
		t.Error("second /stats left display on, want off")
	}
}

func TestCmdRecall_OutOfRangeReportsExchangeCount(t *testing.T) {
	s := testSession()
	s.conv.AddUser("q1")
	s.conv.AddAssistant("a1", nil)
	s.conv.AddUser("q2")
	s.conv.AddAssistant("a2", nil)

	err := s.cmdRecall([]string{"5"})
	if !errors.Is(err, chat.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if !strings.Contains(err.Error(), "2 exchanges") {
		t.Errorf("err = %q, want the exchange count in the message", err)
	}
	if len(s.recalls) != 0 {
		t.Errorf("failed recall queued a pair: %v", s.recalls)
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	s := testSession()
	out := s.renderTable(func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "NAME\tSIZE\n")
		fmt.Fprintf(w, "llama3.2:latest\t2.0 GB\n")
		fmt.Fprintf(w, "qwen2.5:7b\t4.4 GB\n")
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "NAME") || !strings.Contains(lines[0], "SIZE") {
		t.Errorf("header = %q", lines[0])
	}
	// Header styling happens after layout, so the data columns still line up.
	if !strings.HasPrefix(lines[2], "qwen2.5:7b       4.4 GB") {
		t.Errorf("row = %q, want tab stops resolved to aligned columns", lines[2])
	}
}
