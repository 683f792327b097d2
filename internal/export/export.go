// Package export converts saved conversation documents to plain text,
// markdown, or HTML. All conversions are pure functions of the document.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/termchat/termchat/internal/chat"
	"github.com/termchat/termchat/internal/store"
)

// Format selects the output representation.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Options controls the conversion.
type Options struct {
	Header bool // include model and system prompt header
	Wrap   int  // wrap text output at this column (0 = no wrapping)
}

// Convert renders the document in the requested format.
func Convert(doc *store.Document, format Format, opts Options) (string, error) {
	switch format {
	case FormatText:
		return Text(doc, opts), nil
	case FormatMarkdown:
		return Markdown(doc, opts), nil
	case FormatHTML:
		return HTML(doc, opts)
	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}
}

// Text renders the conversation as plain text, one labelled block per
// message.
func Text(doc *store.Document, opts Options) string {
	var lines []string

	if opts.Header {
		if doc.Model != "" {
			lines = append(lines, "Model: "+doc.Model)
		}
		if doc.SystemPrompt != "" {
			lines = append(lines, "System prompt: "+doc.SystemPrompt)
		}
		if len(lines) > 0 {
			lines = append(lines, "", strings.Repeat("-", 60), "")
		}
	}

	for i, msg := range doc.Messages {
		lines = append(lines, roleLabel(msg.Role)+timestampSuffix(msg.Timestamp)+":")
		content := msg.Content
		if opts.Wrap > 0 {
			content = wordwrap.String(content, opts.Wrap)
		}
		lines = append(lines, content)
		if i < len(doc.Messages)-1 {
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

// Markdown renders the conversation as a markdown document, preserving
// any markdown already present in the message bodies.
func Markdown(doc *store.Document, opts Options) string {
	var b strings.Builder

	if opts.Header {
		b.WriteString("# Conversation\n\n")
		if doc.Model != "" {
			fmt.Fprintf(&b, "**Model:** %s\n\n", doc.Model)
		}
		if doc.SystemPrompt != "" {
			fmt.Fprintf(&b, "**System prompt:** %s\n\n", doc.SystemPrompt)
		}
		b.WriteString("---\n\n")
	}

	for _, msg := range doc.Messages {
		fmt.Fprintf(&b, "## %s%s\n\n", roleLabel(msg.Role), timestampSuffix(msg.Timestamp))
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// HTML renders the markdown form through goldmark into a standalone
// page.
func HTML(doc *store.Document, opts Options) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(doc, opts)), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Conversation</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

func roleLabel(role chat.Role) string {
	switch role {
	case chat.RoleUser:
		return "You"
	case chat.RoleAssistant:
		return "Assistant"
	default:
		r := string(role)
		if r == "" {
			return "Unknown"
		}
		return strings.ToUpper(r[:1]) + r[1:]
	}
}

func timestampSuffix(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return " (" + ts.Format("2006-01-02 15:04:05") + ")"
}
