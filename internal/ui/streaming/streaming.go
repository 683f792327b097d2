// Package streaming renders a live token stream to the terminal. During
// the stream it word-wraps raw text as fragments arrive; once the stream
// ends it erases exactly the lines it drew and replaces them with a final
// formatted rendering of the complete text, so the transcript looks the
// same as if only the finished output had ever been written.
package streaming

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// fallbackWidth is used when the caller passes a malformed terminal
// width. Finalization must always complete, so width errors never abort
// a render.
const fallbackWidth = 80

// TokenSource is a single-pass sequence of text fragments. Recv returns
// io.EOF at normal exhaustion; any other error is a distinguished
// termination (interrupt or transport failure) that still finalizes the
// display with whatever text accumulated.
type TokenSource interface {
	Recv() (string, error)
}

// FormatFunc produces the final formatted rendering of the accumulated
// text. It must be a pure function of its inputs.
type FormatFunc func(text string, width int) string

// Renderer streams one assistant turn. It is created per turn and
// discarded after Run; it never touches conversation state.
type Renderer struct {
	out    io.Writer
	width  int
	format FormatFunc

	// Visual render state, valid for one turn.
	word  strings.Builder // pending incomplete word
	text  strings.Builder // everything received so far
	col   int             // current cursor column
	lines int             // newline-terminated writes emitted so far
}

// New creates a renderer for one turn. A width below 1 falls back to a
// safe default; a nil format displays the raw text unchanged.
func New(out io.Writer, width int, format FormatFunc) *Renderer {
	if width < 1 {
		width = fallbackWidth
	}
	if format == nil {
		format = func(text string, _ int) string { return text }
	}
	return &Renderer{out: out, width: width, format: format}
}

// Run consumes the source to exhaustion, streaming word-wrapped output as
// fragments arrive, then erases the streamed lines and writes the final
// formatted rendering. It returns the accumulated text, the exact number
// of visual lines that were erased, and the source's abnormal-termination
// error if any. Finalization runs on every termination path.
func (r *Renderer) Run(src TokenSource) (string, int, error) {
	var streamErr error
	for {
		token, err := src.Recv()
		if token != "" {
			r.write(token)
		}
		if err != nil {
			if err != io.EOF {
				streamErr = err
			}
			break
		}
	}

	lines := r.finalize()
	return r.text.String(), lines, streamErr
}

// write feeds one fragment through the word buffer. A word is only
// emitted once a following space, newline, or end of stream confirms it
// is complete, so no token boundary ever splits a word on screen.
func (r *Renderer) write(token string) {
	r.text.WriteString(token)
	r.word.WriteString(token)

	buf := r.word.String()
	r.word.Reset()

	start := 0
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case ' ':
			r.flushWord(buf[start:i])
			r.writeSpace()
			start = i + 1
		case '\n':
			r.flushWord(buf[start:i])
			r.lineBreak()
			start = i + 1
		}
	}
	r.word.WriteString(buf[start:])
}

// flushWord writes one complete word, breaking the line first when the
// word would overflow the current one. A word wider than the terminal is
// written unbroken.
func (r *Renderer) flushWord(word string) {
	if word == "" {
		return
	}
	w := runewidth.StringWidth(word)
	if r.col > 0 && r.col+w > r.width {
		r.lineBreak()
	}
	io.WriteString(r.out, word)
	r.col += w
}

// writeSpace writes the separator after a word, wrapping instead when the
// cursor already sits at the edge.
func (r *Renderer) writeSpace() {
	if r.col >= r.width {
		r.lineBreak()
		return
	}
	io.WriteString(r.out, " ")
	r.col++
}

// lineBreak emits a newline and counts it. Every line break, forced or
// wrap-triggered, increments the counter exactly once; the counter drives
// the erase step, so it has to match the writes precisely.
func (r *Renderer) lineBreak() {
	io.WriteString(r.out, "\n")
	r.lines++
	r.col = 0
}

// finalize flushes the pending word, erases the streamed region, and
// writes the formatted rendering. Returns the visual line count used for
// erasure.
func (r *Renderer) finalize() int {
	r.flushWord(r.word.String())
	r.word.Reset()

	lines := r.lines
	if r.col > 0 {
		// The trailing unterminated line still occupies a row.
		lines++
	}
	if lines == 0 {
		return 0
	}

	// With a trailing partial line the cursor is still on it; otherwise
	// it sits one row below the streamed region.
	above := lines
	if r.col > 0 {
		above--
	}
	eraseLines(r.out, above)

	rendered := r.format(r.text.String(), r.width)
	io.WriteString(r.out, rendered)
	if !strings.HasSuffix(rendered, "\n") {
		io.WriteString(r.out, "\n")
	}
	return lines
}
