// Package signal provides interrupt handling for in-flight turns.
package signal

import (
	"context"
	"os"
	"os/signal"
)

// Interruptible derives a context that is cancelled on the first SIGINT.
// The returned cancel releases the signal registration; callers must
// invoke it when the guarded operation finishes so Ctrl-C goes back to
// its default behavior between turns.
func Interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}
