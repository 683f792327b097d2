// Package store persists conversations as one JSON document per
// conversation under a configurable directory. Reads and writes are
// whole-document; there is no partial or append persistence.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/termchat/termchat/internal/chat"
)

// ErrNotFound is returned by Load when no conversation has the given name.
var ErrNotFound = errors.New("no saved conversation with that name")

// Document is the on-disk shape of a saved conversation.
type Document struct {
	Model        string         `json:"model,omitempty"`
	SystemPrompt string         `json:"system_prompt,omitempty"`
	Messages     []chat.Message `json:"messages"`
}

// Entry describes one saved conversation on disk.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Store reads and writes conversation documents in a single directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on
// first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the conversation under the given name, defaulting to a
// timestamp when the name is empty. Returns the path written.
func (s *Store) Save(conv *chat.Conversation, name, model string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create conversations dir: %w", err)
	}

	if name == "" {
		name = time.Now().Format("20060102_150405")
	}
	path := filepath.Join(s.dir, sanitizeName(name)+".json")

	doc := Document{
		Model:        model,
		SystemPrompt: conv.SystemPrompt,
		Messages:     conv.Messages,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write conversation: %w", err)
	}
	return path, nil
}

// Load reads a saved conversation by name. The second return value is
// the model name stored with it.
func (s *Store) Load(name string) (*chat.Conversation, string, error) {
	doc, err := s.Read(name)
	if err != nil {
		return nil, "", err
	}
	conv := chat.New(doc.SystemPrompt)
	conv.Messages = doc.Messages
	return conv, doc.Model, nil
}

// Read returns the raw document for a saved conversation. Export and
// display paths use this to avoid round-tripping through the live model.
func (s *Store) Read(name string) (*Document, error) {
	path := filepath.Join(s.dir, sanitizeName(name)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", name, err)
	}
	return &doc, nil
}

// List returns saved conversations, newest first by modification time.
// A missing directory is an empty list, not an error.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    strings.TrimSuffix(de.Name(), ".json"),
			Path:    filepath.Join(s.dir, de.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Names returns the saved conversation names, newest first. Used for
// tab completion of /load and /cat.
func (s *Store) Names() []string {
	entries, err := s.List()
	if err != nil {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// sanitizeName keeps letters, digits, dash, and underscore; anything else
// becomes an underscore so a name can never escape the store directory.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
