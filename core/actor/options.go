package actor

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultBufferSize is the default capacity of the command queue.
	DefaultBufferSize = 1024
)

// TickFunc is the periodic maintenance function. It runs on the actor goroutine
// with exclusive access to the state.
type TickFunc[S any] func(ctx context.Context, state S, now time.Time)

// Option configures an Actor.
type Option[S any] func(*Actor[S])

// WithTick registers a maintenance function executed every interval.
// A non-positive interval or nil function disables the tick.
func WithTick[S any](interval time.Duration, fn TickFunc[S]) Option[S] {
	return func(a *Actor[S]) {
		if interval > 0 && fn != nil {
			a.interval = interval
			a.tick = fn
		}
	}
}

// WithBufferSize sets the command queue capacity.
// Submitters block (honouring their context) once the queue is full.
func WithBufferSize[S any](size int) Option[S] {
	return func(a *Actor[S]) {
		if size > 0 {
			a.bufferSize = size
		}
	}
}

// WithLogger configures structured logging for the actor.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(a *Actor[S]) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source passed to the tick function.
func WithClock[S any](now func() time.Time) Option[S] {
	return func(a *Actor[S]) {
		if now != nil {
			a.now = now
		}
	}
}

// WithName sets the actor name used in log records.
func WithName[S any](name string) Option[S] {
	return func(a *Actor[S]) {
		if name != "" {
			a.name = name
		}
	}
}
