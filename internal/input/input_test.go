package input

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testReader() *Reader {
	return &Reader{
		commands: []string{"/clear", "/cat", "/config", "/load", "/models"},
		names:    func() []string { return []string{"go-questions", "rust-notes", "groceries"} },
	}
}

func TestComplete_SlashCommandPrefix(t *testing.T) {
	r := testReader()

	got := r.complete("/c")
	want := []string{"/clear", "/cat", "/config"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("complete(/c) = %v, want %v", got, want)
	}

	if got := r.complete("/z"); got != nil {
		t.Errorf("complete(/z) = %v, want none", got)
	}
}

func TestComplete_IgnoresPlainText(t *testing.T) {
	r := testReader()
	if got := r.complete("hello"); got != nil {
		t.Errorf("complete(hello) = %v, want none", got)
	}
}

func TestComplete_ConversationNames(t *testing.T) {
	r := testReader()

	// Empty argument offers everything.
	got := r.complete("/load ")
	if len(got) != 3 {
		t.Fatalf("complete(/load ) = %v, want all names", got)
	}
	if got[0] != "/load go-questions" {
		t.Errorf("first completion = %q", got[0])
	}

	// Fuzzy matching on the partial argument.
	got = r.complete("/load gq")
	if len(got) == 0 || got[0] != "/load go-questions" {
		t.Errorf("complete(/load gq) = %v, want fuzzy match on go-questions", got)
	}

	// /cat completes names too.
	got = r.complete("/cat rust")
	if len(got) != 1 || got[0] != "/cat rust-notes" {
		t.Errorf("complete(/cat rust) = %v", got)
	}
}

func TestComplete_NoNameSource(t *testing.T) {
	r := &Reader{commands: []string{"/load"}}
	if got := r.complete("/load part"); got != nil {
		t.Errorf("complete without name source = %v, want none", got)
	}
}

func TestClose_PersistsHistoryInMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termchat", "history")

	r := New(path, nil, nil)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("history file not written: %v", err)
	}
}
