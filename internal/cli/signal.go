// Package cli holds shared helpers for the tessera commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalContext is a context cancelled by SIGINT or SIGTERM that remembers
// which signal did it. Commands use that to tell an interrupted run apart
// from an ordinary cancellation when printing the resume hint.
type SignalContext struct {
	context.Context

	cancel context.CancelFunc
	mu     sync.Mutex
	sig    os.Signal
}

// NewSignalContext derives a context from parent and starts listening for
// SIGINT and SIGTERM. Call Cancel when done to release the signal handler.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case s := <-ch:
			sc.mu.Lock()
			sc.sig = s
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Cancel stops the context and the signal handler.
func (sc *SignalContext) Cancel() { sc.cancel() }

// Signal reports which signal cancelled the context, or nil if none did.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}
