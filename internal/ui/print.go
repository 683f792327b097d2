package ui

import (
	"fmt"
	"os"
)

// Printer writes styled status lines to a terminal.
type Printer struct {
	styles *Styles
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter() *Printer {
	return &Printer{styles: NewStyles(os.Stdout)}
}

// Styles exposes the underlying style set.
func (p *Printer) Styles() *Styles {
	return p.styles
}

// Info prints a plain informational line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Muted prints a dimmed line.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Println(p.styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Println(p.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error line to stderr.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(os.Stderr, p.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Println(p.styles.Success.Render(fmt.Sprintf(format, args...)))
}
