package ollama

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// chatServer streams the given NDJSON lines for any /api/chat request.
func chatServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
}

// drain consumes a stream to termination, collecting the text.
func drain(t *testing.T, s *ChatStream) (string, error) {
	t.Helper()
	var b strings.Builder
	for {
		tok, err := s.Recv()
		b.WriteString(tok)
		if err != nil {
			if err == io.EOF {
				return b.String(), nil
			}
			return b.String(), err
		}
	}
}

func TestChatStream_RecvTokensThenEOF(t *testing.T) {
	srv := chatServer(t,
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":" there"},"done":false}`,
		`{"message":{"role":"assistant","content":""},"done":true,"eval_count":12,"eval_duration":2000000000,"prompt_eval_count":40,"total_duration":3000000000}`,
	)
	defer srv.Close()

	stream, err := NewClient(srv.URL).Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	defer stream.Close()

	text, err := drain(t, stream)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if text != "Hello there" {
		t.Errorf("text = %q", text)
	}

	// Recv after exhaustion keeps returning io.EOF.
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("Recv after done = %v, want io.EOF", err)
	}
}

func TestChatStream_StatsOnlyAfterDone(t *testing.T) {
	srv := chatServer(t,
		`{"message":{"role":"assistant","content":"hi"},"done":false}`,
		`{"done":true,"eval_count":10,"eval_duration":2000000000,"prompt_eval_count":25,"prompt_eval_duration":500000000,"total_duration":2600000000}`,
	)
	defer srv.Close()

	stream, err := NewClient(srv.URL).Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	defer stream.Close()

	if _, err := stream.Stats(); !errors.Is(err, ErrStreamActive) {
		t.Errorf("Stats before consumption = %v, want ErrStreamActive", err)
	}

	if _, err := drain(t, stream); err != nil {
		t.Fatalf("drain: %v", err)
	}

	stats, err := stream.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.EvalCount != 10 || stats.PromptEvalCount != 25 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.EvalDuration != 2*time.Second {
		t.Errorf("eval duration = %v, want 2s", stats.EvalDuration)
	}
	if stats.TokensPerSecond != 5 {
		t.Errorf("tokens/sec = %v, want 5", stats.TokensPerSecond)
	}
}

func TestChatStream_ServerErrorChunk(t *testing.T) {
	srv := chatServer(t,
		`{"message":{"role":"assistant","content":"par"},"done":false}`,
		`{"error":"model runner crashed"}`,
	)
	defer srv.Close()

	stream, err := NewClient(srv.URL).Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	defer stream.Close()

	text, err := drain(t, stream)
	if err == nil || !strings.Contains(err.Error(), "model runner crashed") {
		t.Errorf("err = %v, want the server error", err)
	}
	if text != "par" {
		t.Errorf("partial text = %q", text)
	}
}

func TestChatStream_TruncatedStream(t *testing.T) {
	srv := chatServer(t,
		`{"message":{"role":"assistant","content":"cut"},"done":false}`,
	)
	defer srv.Close()

	stream, err := NewClient(srv.URL).Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	defer stream.Close()

	_, err = drain(t, stream)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestChatStream_SkipsBlankAndMalformedLines(t *testing.T) {
	srv := chatServer(t,
		``,
		`not json`,
		`{"message":{"role":"assistant","content":"ok"},"done":false}`,
		`{"done":true}`,
	)
	defer srv.Close()

	stream, err := NewClient(srv.URL).Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	defer stream.Close()

	text, err := drain(t, stream)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q", text)
	}
}

func TestChatStream_CancelledMidStream(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"partial"},"done":false}`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-blocked // hold the stream open until the test ends
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := NewClient(srv.URL).Chat(ctx, ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	defer stream.Close()

	tok, err := stream.Recv()
	if err != nil || tok != "partial" {
		t.Fatalf("first Recv = %q, %v", tok, err)
	}

	cancel()
	_, err = stream.Recv()
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("Recv after cancel = %v, want ErrInterrupted", err)
	}
}
