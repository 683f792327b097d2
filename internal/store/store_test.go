package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/termchat/termchat/internal/chat"
)

func testConversation(t *testing.T) *chat.Conversation {
	t.Helper()
	conv := chat.New("be helpful")
	conv.AddUser("what is Go?")
	conv.AddAssistant("A programming language.", nil)
	return conv
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(t.TempDir())
	conv := testConversation(t)

	path, err := s.Save(conv, "my-chat", "llama3.2")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "my-chat.json" {
		t.Errorf("path = %s", path)
	}

	loaded, model, err := s.Load("my-chat")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if model != "llama3.2" {
		t.Errorf("model = %q", model)
	}
	if loaded.SystemPrompt != "be helpful" {
		t.Errorf("system prompt = %q", loaded.SystemPrompt)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("messages = %d", len(loaded.Messages))
	}
	if loaded.Messages[1].Role != chat.RoleAssistant || loaded.Messages[1].Content != "A programming language." {
		t.Errorf("assistant message = %+v", loaded.Messages[1])
	}
}

func TestSave_DefaultNameIsTimestamp(t *testing.T) {
	s := New(t.TempDir())
	path, err := s.Save(testConversation(t), "", "m")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	if _, err := time.Parse("20060102_150405", name); err != nil {
		t.Errorf("default name %q is not a timestamp: %v", name, err)
	}
}

func TestSave_SanitizesName(t *testing.T) {
	s := New(t.TempDir())
	path, err := s.Save(testConversation(t), "../escape/at tempt!", "m")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != s.Dir() {
		t.Fatalf("path escaped the store directory: %s", path)
	}
	if base := filepath.Base(path); strings.ContainsAny(base, "/! ") {
		t.Errorf("unsanitized name: %s", base)
	}

	// The same raw name loads back.
	if _, _, err := s.Load("../escape/at tempt!"); err != nil {
		t.Errorf("Load with raw name: %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := New(t.TempDir())
	_, _, err := s.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if _, err := s.Save(testConversation(t), "older", "m"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(testConversation(t), "newer", "m"); err != nil {
		t.Fatal(err)
	}
	// Make the ordering unambiguous without sleeping.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "older.json"), past, past); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Name != "newer" || entries[1].Name != "older" {
		t.Errorf("order = %s, %s; want newest first", entries[0].Name, entries[1].Name)
	}
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does", "not", "exist"))
	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want none", len(entries))
	}
}

func TestList_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if _, err := s.Save(testConversation(t), "real", "m"); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	os.Mkdir(filepath.Join(dir, "subdir"), 0o755)

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "real" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestNames(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Save(testConversation(t), "alpha", "m"); err != nil {
		t.Fatal(err)
	}
	names := s.Names()
	if len(names) != 1 || names[0] != "alpha" {
		t.Errorf("names = %v", names)
	}
}
