// Package chat holds the conversation data model: an ordered log of
// role-tagged messages, the system prompt, recall/retry semantics, and
// summary statistics. It never touches the terminal or the network.
package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/termchat/termchat/internal/ollama"
)

// Role identifies the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	// ErrInvalidState is returned by Retry when the history does not end
	// with an assistant message.
	ErrInvalidState = errors.New("last message is not an assistant response")
	// ErrOutOfRange is returned by Pair when the requested exchange does
	// not exist.
	ErrOutOfRange = errors.New("message pair out of range")
)

// recallNote is prepended to a recalled exchange so the model knows the
// pair is repeated context, not a fresh question.
const recallNote = "[The following exchange is recalled from earlier in the conversation for context]"

// Message is one entry in the conversation log. Messages are immutable
// once appended; only Retry removes one, and only from the tail.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnStats records what the server reported for the latest completed
// assistant turn. Only the most recent turn's stats are kept.
type TurnStats struct {
	TokensGenerated int
	Duration        time.Duration
	PromptTokens    int
	TokensPerSec    float64
}

// Pair is one user/assistant exchange. Assistant is nil when the user
// message was never answered.
type Pair struct {
	User      Message
	Assistant *Message
}

// Summary holds aggregate conversation statistics for display. The token
// figure is the cheap chars/4 estimate, not the model-reported count from
// TurnStats.
type Summary struct {
	Messages          int
	UserMessages      int
	AssistantMessages int
	Words             int
	Characters        int
	EstimatedTokens   int
}

// Conversation is the ordered message log plus the system prompt. The
// system prompt is never stored as a Message; it is prepended when the
// outgoing request is built, so recall and retry can manipulate pairs
// without disturbing it.
type Conversation struct {
	SystemPrompt string
	Messages     []Message
	LastStats    *TurnStats
}

// New creates an empty conversation with the given system prompt.
func New(systemPrompt string) *Conversation {
	return &Conversation{SystemPrompt: systemPrompt}
}

// AddUser appends a user message timestamped now.
func (c *Conversation) AddUser(content string) {
	c.Messages = append(c.Messages, Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// AddAssistant appends an assistant message and replaces the stored turn
// stats. A nil stats keeps the previous stats untouched (interrupted
// turns report none).
func (c *Conversation) AddAssistant(content string, stats *TurnStats) {
	c.Messages = append(c.Messages, Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	})
	if stats != nil {
		c.LastStats = stats
	}
}

// SetSystemPrompt replaces the system prompt. Multi-paragraph text is
// kept verbatim.
func (c *Conversation) SetSystemPrompt(prompt string) {
	c.SystemPrompt = prompt
}

// Clear removes all messages and forgets the last turn stats. The system
// prompt survives.
func (c *Conversation) Clear() {
	c.Messages = nil
	c.LastStats = nil
}

// Retry removes the most recent assistant message so the same context can
// be regenerated. It fails with ErrInvalidState when the history is empty
// or does not end with an assistant message, leaving history unmodified.
func (c *Conversation) Retry() error {
	if len(c.Messages) == 0 || c.Messages[len(c.Messages)-1].Role != RoleAssistant {
		return ErrInvalidState
	}
	c.Messages = c.Messages[:len(c.Messages)-1]
	return nil
}

// Pair returns the n-th most recent user/assistant exchange, 1-indexed
// from the end. History is not mutated. An assistant message only joins
// the pair when it directly follows its user message; anything else is a
// mixed-order history and the reply is treated as missing rather than
// guessed.
func (c *Conversation) Pair(n int) (Pair, error) {
	var userIdx []int
	for i, m := range c.Messages {
		if m.Role == RoleUser {
			userIdx = append(userIdx, i)
		}
	}
	if n < 1 || n > len(userIdx) {
		return Pair{}, ErrOutOfRange
	}

	i := userIdx[len(userIdx)-n]
	p := Pair{User: c.Messages[i]}
	if i+1 < len(c.Messages) && c.Messages[i+1].Role == RoleAssistant {
		reply := c.Messages[i+1]
		p.Assistant = &reply
	}
	return p, nil
}

// Pairs returns the number of user/assistant exchanges in the history.
func (c *Conversation) Pairs() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// RequestMessages builds the outgoing request context: the system prompt
// first (when set), then the stored history in order, then any recalled
// pairs appended at the end behind a context note. The recall set is
// request-scoped; stored history is never mutated.
func (c *Conversation) RequestMessages(recalls ...Pair) []ollama.Message {
	msgs := make([]ollama.Message, 0, len(c.Messages)+2*len(recalls)+2)

	if c.SystemPrompt != "" {
		msgs = append(msgs, ollama.Message{Role: string(RoleSystem), Content: c.SystemPrompt})
	}
	for _, m := range c.Messages {
		msgs = append(msgs, ollama.Message{Role: string(m.Role), Content: m.Content})
	}

	if len(recalls) > 0 {
		msgs = append(msgs, ollama.Message{Role: string(RoleUser), Content: recallNote})
		for _, p := range recalls {
			msgs = append(msgs, ollama.Message{Role: string(RoleUser), Content: p.User.Content})
			if p.Assistant != nil {
				msgs = append(msgs, ollama.Message{Role: string(RoleAssistant), Content: p.Assistant.Content})
			}
		}
	}
	return msgs
}

// Info computes aggregate statistics over the stored messages.
func (c *Conversation) Info() Summary {
	var s Summary
	var all strings.Builder

	s.Messages = len(c.Messages)
	for _, m := range c.Messages {
		switch m.Role {
		case RoleUser:
			s.UserMessages++
		case RoleAssistant:
			s.AssistantMessages++
		}
		s.Characters += len(m.Content)
		all.WriteString(m.Content)
		all.WriteString(" ")
	}
	s.Words = len(strings.Fields(all.String()))
	s.EstimatedTokens = (s.Characters + 3) / 4
	return s
}
