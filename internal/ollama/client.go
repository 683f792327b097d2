// Package ollama is the HTTP client for a local Ollama server. It exposes
// model listing, model metadata, and streaming chat; the streaming side is
// a pull-based token source that reports generation statistics only after
// the stream has been fully consumed.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

var (
	// ErrNotRunning indicates the server could not be reached at all.
	ErrNotRunning = errors.New("ollama is not reachable")
	// ErrModelNotFound indicates the requested model is not installed.
	ErrModelNotFound = errors.New("model not found")
)

// Client talks to one Ollama server. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. An empty URL uses
// DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Available reports whether the server answers on its base URL.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// ListModels returns the installed models from /api/tags, in server order.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: %s", resp.Status)
	}

	var result listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	return result.Models, nil
}

// ContextLength returns the model's context window size in tokens, taken
// from the "<arch>.context_length" key of /api/show model_info. Returns 0
// when the server does not report one.
func (c *Client) ContextLength(ctx context.Context, model string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body, err := json.Marshal(showRequest{Model: model})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/show", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("%w: %s", ErrModelNotFound, model)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("show model: %s", resp.Status)
	}

	var result showResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode model info: %w", err)
	}

	for key, val := range result.ModelInfo {
		if !strings.HasSuffix(key, ".context_length") {
			continue
		}
		if n, ok := val.(float64); ok && n > 0 {
			return int(n), nil
		}
	}
	return 0, nil
}

// Chat starts a streaming chat request and returns the token stream. The
// stream stays open until consumed to io.EOF, interrupted through ctx, or
// closed; the caller owns closing it.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatStream, error) {
	req.Stream = true
	if req.Options.IsZero() {
		req.Options = nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrInterrupted
		}
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg := readServerError(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, req.Model)
		}
		if msg != "" {
			return nil, fmt.Errorf("chat request: %s: %s", resp.Status, msg)
		}
		return nil, fmt.Errorf("chat request: %s", resp.Status)
	}

	return newChatStream(ctx, resp.Body), nil
}

// readServerError pulls the "error" field out of a non-200 response body.
func readServerError(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
