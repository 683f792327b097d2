package ollama

import "time"

// Message is a single chat message in the Ollama wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options holds model sampling parameters for a chat request.
// Nil fields mean "use the server default" and are omitted from the
// request entirely; a zero value is a real setting, not an absence.
type Options struct {
	Seed        *int     `json:"seed,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	NumCtx      *int     `json:"num_ctx,omitempty"`
}

// IsZero reports whether no option is set.
func (o *Options) IsZero() bool {
	return o == nil || (o.Seed == nil && o.Temperature == nil && o.TopP == nil && o.NumCtx == nil)
}

// ChatRequest is the request body for /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

// Model describes one entry from /api/tags.
type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Stats holds the generation statistics Ollama reports on the final
// chunk of a streamed chat response. Durations come over the wire in
// nanoseconds.
type Stats struct {
	EvalCount          int
	EvalDuration       time.Duration
	PromptEvalCount    int
	PromptEvalDuration time.Duration
	TotalDuration      time.Duration
	TokensPerSecond    float64
}

// chatChunk is one NDJSON line of a streaming /api/chat response.
type chatChunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done               bool   `json:"done"`
	DoneReason         string `json:"done_reason,omitempty"`
	Error              string `json:"error,omitempty"`
	TotalDuration      int64  `json:"total_duration,omitempty"`
	PromptEvalCount    int    `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64  `json:"prompt_eval_duration,omitempty"`
	EvalCount          int    `json:"eval_count,omitempty"`
	EvalDuration       int64  `json:"eval_duration,omitempty"`
}

type listModelsResponse struct {
	Models []Model `json:"models"`
}

type showRequest struct {
	Model string `json:"model"`
}

type showResponse struct {
	ModelInfo map[string]any `json:"model_info"`
}
