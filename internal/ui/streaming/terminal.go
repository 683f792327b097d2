package streaming

import (
	"io"

	"github.com/charmbracelet/x/ansi"
)

// eraseLines repositions the cursor at the start of the streamed region
// and clears from there to the end of the screen. linesAbove is how many
// rows the cursor must move up to reach the region's first line; the
// column reset handles a cursor resting mid-line.
func eraseLines(out io.Writer, linesAbove int) {
	seq := ""
	if linesAbove > 0 {
		seq += ansi.CursorUp(linesAbove)
	}
	seq += ansi.CursorHorizontalAbsolute(1)
	seq += ansi.EraseDisplay(0)
	io.WriteString(out, seq)
}
