package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// InterruptHandler cancels a command's context on SIGINT or SIGTERM and
// tells the user that unfinished output was not written.
type InterruptHandler struct {
	writer      io.Writer
	signals     chan os.Signal
	interrupted atomic.Bool
}

// NewInterruptHandler returns a handler that reports to writer, or to
// stderr when writer is nil.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{writer: writer, signals: make(chan os.Signal, 1)}
}

// HandleInterrupts returns a context canceled on the first interrupt.
// operation names the step in the message shown, e.g. "Numbering".
// Signal delivery stops once ctx ends.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, operation string) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(h.signals)
		select {
		case <-h.signals:
			if h.interrupted.CompareAndSwap(false, true) {
				h.report(operation)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) report(operation string) {
	msg := "\n" + FormatWarning(operation+" interrupted!") +
		"\n" + FormatInfo("Nothing was written for the unfinished step.") + "\n"
	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err) //nolint:forbidigo // Last-resort output
	}
}

// WasInterrupted reports whether a signal arrived.
func (h *InterruptHandler) WasInterrupted() bool {
	return h.interrupted.Load()
}
