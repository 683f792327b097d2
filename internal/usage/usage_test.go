package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	turns := []Turn{
		{Model: "llama3.2", PromptTokens: 100, EvalTokens: 50, Duration: 2 * time.Second},
		{Model: "llama3.2", PromptTokens: 200, EvalTokens: 80, Duration: 3 * time.Second},
		{Model: "qwen2.5:7b", PromptTokens: 50, EvalTokens: 300, Duration: 5 * time.Second},
	}
	for _, turn := range turns {
		if err := s.Record(ctx, turn); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	rows, err := s.Summary(ctx, 0)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("models = %d, want 2", len(rows))
	}

	// Ordered by generated tokens, most first.
	if rows[0].Model != "qwen2.5:7b" || rows[0].EvalTokens != 300 {
		t.Errorf("top model = %+v", rows[0])
	}
	if rows[1].Model != "llama3.2" || rows[1].Turns != 2 || rows[1].PromptTokens != 300 || rows[1].EvalTokens != 130 {
		t.Errorf("aggregate = %+v", rows[1])
	}
	if rows[1].TotalDuration != 5*time.Second {
		t.Errorf("duration = %v, want 5s", rows[1].TotalDuration)
	}
}

func TestSummary_DayWindow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := Turn{Model: "m", EvalTokens: 10, CreatedAt: time.Now().AddDate(0, 0, -40)}
	recent := Turn{Model: "m", EvalTokens: 20}
	if err := s.Record(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, recent); err != nil {
		t.Fatal(err)
	}

	rows, err := s.Summary(ctx, 30)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 1 || rows[0].Turns != 1 || rows[0].EvalTokens != 20 {
		t.Errorf("windowed summary = %+v, want only the recent turn", rows)
	}

	all, err := s.Summary(ctx, 0)
	if err != nil {
		t.Fatalf("Summary(0): %v", err)
	}
	if len(all) != 1 || all[0].Turns != 2 {
		t.Errorf("full summary = %+v, want both turns", all)
	}
}

func TestSummary_Empty(t *testing.T) {
	s := openTestStore(t)
	rows, err := s.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want none", rows)
	}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "usage.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()
}
