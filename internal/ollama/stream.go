package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrInterrupted marks a stream that ended because the caller's
	// context was cancelled. The text received so far is still valid.
	ErrInterrupted = errors.New("generation interrupted")
	// ErrStreamActive is returned by Stats before the stream has been
	// consumed to completion.
	ErrStreamActive = errors.New("stats not available until the stream is consumed")
)

// ChatStream is a single-pass token source over a streaming /api/chat
// response. Recv yields content fragments until io.EOF; once exhausted,
// Stats exposes the server-reported generation statistics.
type ChatStream struct {
	ctx    context.Context
	body   io.ReadCloser
	reader *bufio.Reader

	done  bool
	stats Stats
}

func newChatStream(ctx context.Context, body io.ReadCloser) *ChatStream {
	return &ChatStream{
		ctx:    ctx,
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Recv returns the next content fragment. It returns io.EOF after the
// final chunk, ErrInterrupted when the context is cancelled mid-stream,
// and a wrapped transport error on any other failure.
func (s *ChatStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if s.ctx.Err() != nil {
				s.body.Close()
				return "", ErrInterrupted
			}
			if err == io.EOF {
				// Server closed without a done chunk.
				s.body.Close()
				return "", fmt.Errorf("stream ended early: %w", io.ErrUnexpectedEOF)
			}
			s.body.Close()
			return "", fmt.Errorf("read stream: %w", err)
		}

		if len(line) <= 1 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Skip malformed keep-alive noise rather than aborting the turn.
			continue
		}
		if chunk.Error != "" {
			s.body.Close()
			return "", fmt.Errorf("server error: %s", chunk.Error)
		}

		if chunk.Done {
			s.captureStats(chunk)
			s.done = true
			s.body.Close()
			if chunk.Message.Content != "" {
				return chunk.Message.Content, nil
			}
			return "", io.EOF
		}

		if chunk.Message.Content != "" {
			return chunk.Message.Content, nil
		}
	}
}

// Stats returns the generation statistics from the final chunk. Calling
// it before Recv has returned io.EOF is an error: stats do not exist
// until the server sends its terminal event.
func (s *ChatStream) Stats() (Stats, error) {
	if !s.done {
		return Stats{}, ErrStreamActive
	}
	return s.stats, nil
}

// Close releases the underlying response body. Safe after exhaustion.
func (s *ChatStream) Close() error {
	return s.body.Close()
}

func (s *ChatStream) captureStats(chunk chatChunk) {
	s.stats = Stats{
		EvalCount:          chunk.EvalCount,
		EvalDuration:       time.Duration(chunk.EvalDuration),
		PromptEvalCount:    chunk.PromptEvalCount,
		PromptEvalDuration: time.Duration(chunk.PromptEvalDuration),
		TotalDuration:      time.Duration(chunk.TotalDuration),
	}
	if s.stats.EvalCount > 0 && s.stats.EvalDuration > 0 {
		s.stats.TokensPerSecond = float64(s.stats.EvalCount) / s.stats.EvalDuration.Seconds()
	}
}
