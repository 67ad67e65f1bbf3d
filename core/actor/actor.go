package actor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// command is a unit of work executed on the actor goroutine with exclusive access to the state.
type command[S any] func(ctx context.Context, state S)

// Actor owns a value of type S and serializes every access to it through a command queue.
// All mutation happens on the single goroutine running Start, so S needs no locking.
//
// The command queue is never closed. Submitting after the run loop exits returns ErrStopped.
type Actor[S any] struct {
	name       string
	state      S
	commands   chan command[S]
	bufferSize int
	interval   time.Duration
	tick       TickFunc[S]
	now        func() time.Time
	logger     *slog.Logger

	started atomic.Bool
	running atomic.Bool
	done    chan struct{}

	processed atomic.Int64
	sweeps    atomic.Int64
	panics    atomic.Int64
}

// Stats provides observability counters for an actor.
type Stats struct {
	Name      string
	Running   bool
	Queued    int   // Commands waiting in the queue
	Processed int64 // Commands executed since start
	Sweeps    int64 // Tick executions, periodic or forced
	Panics    int64 // Recovered panics
}

// New creates an actor owning state. The actor does nothing until Start is called,
// but commands submitted before that are buffered and processed in order once it runs.
func New[S any](state S, opts ...Option[S]) *Actor[S] {
	a := &Actor[S]{
		name:       "actor",
		state:      state,
		bufferSize: DefaultBufferSize,
		now:        time.Now,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.commands = make(chan command[S], a.bufferSize)

	return a
}

// Start runs the command loop and blocks until the context is cancelled.
// Returns ctx.Err() on cancellation. An actor can be started only once.
func (a *Actor[S]) Start(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	a.running.Store(true)
	defer func() {
		a.running.Store(false)
		close(a.done)
	}()

	var tickC <-chan time.Time
	if a.tick != nil {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	a.logger.InfoContext(ctx, "actor started",
		slog.String("actor", a.name),
		slog.Duration("tick_interval", a.interval))

	for {
		select {
		case <-ctx.Done():
			a.logger.InfoContext(context.Background(), "actor stopping",
				slog.String("actor", a.name),
				slog.Int("queued", len(a.commands)))
			return ctx.Err()
		case cmd := <-a.commands:
			a.processed.Add(1)
			a.exec(ctx, cmd)
		case <-tickC:
			a.exec(ctx, a.tickCommand())
		}
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// Context cancellation is treated as a normal shutdown.
func (a *Actor[S]) Run(ctx context.Context) func() error {
	return func() error {
		err := a.Start(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}

// Done is closed once the run loop has exited.
func (a *Actor[S]) Done() <-chan struct{} {
	return a.done
}

// Do submits fn and waits until the actor has executed it.
func (a *Actor[S]) Do(ctx context.Context, fn func(ctx context.Context, state S)) error {
	_, err := Call(ctx, a, func(ctx context.Context, state S) struct{} {
		fn(ctx, state)
		return struct{}{}
	})
	return err
}

// Sweep runs the tick function immediately on the actor goroutine and waits for it.
// It is a no-op when no tick is configured.
func (a *Actor[S]) Sweep(ctx context.Context) error {
	if a.tick == nil {
		return nil
	}
	return a.Do(ctx, a.tickCommand())
}

// Stats returns current counters. Safe to call from any goroutine.
func (a *Actor[S]) Stats() Stats {
	return Stats{
		Name:      a.name,
		Running:   a.running.Load(),
		Queued:    len(a.commands),
		Processed: a.processed.Load(),
		Sweeps:    a.sweeps.Load(),
		Panics:    a.panics.Load(),
	}
}

// Healthcheck reports whether the run loop is active.
func (a *Actor[S]) Healthcheck(ctx context.Context) error {
	if !a.running.Load() {
		return errors.Join(ErrHealthcheckFailed, fmt.Errorf("%w: %s", ErrNotRunning, a.name))
	}
	return nil
}

// Call submits fn with a fresh one-shot reply channel and waits for its result.
//
// The reply channel has capacity one, so the actor never blocks on it. If the caller's
// context ends first the result is discarded, but any state change fn made still stands.
func Call[S, R any](ctx context.Context, a *Actor[S], fn func(ctx context.Context, state S) R) (R, error) {
	type result struct {
		val R
		err error
	}

	var zero R
	reply := make(chan result, 1)

	err := a.submit(ctx, func(actx context.Context, state S) {
		defer func() {
			if p := recover(); p != nil {
				reply <- result{err: fmt.Errorf("%w: %v", ErrPanicked, p)}
				panic(p)
			}
		}()
		reply <- result{val: fn(actx, state)}
	})
	if err != nil {
		return zero, err
	}

	select {
	case r := <-reply:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-a.done:
		// The command may have run right before the loop exited.
		select {
		case r := <-reply:
			return r.val, r.err
		default:
			return zero, ErrStopped
		}
	}
}

func (a *Actor[S]) submit(ctx context.Context, cmd command[S]) error {
	select {
	case <-a.done:
		return ErrStopped
	default:
	}

	select {
	case a.commands <- cmd:
		return nil
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Actor[S]) tickCommand() command[S] {
	return func(ctx context.Context, state S) {
		a.sweeps.Add(1)
		a.tick(ctx, state, a.now())
	}
}

// exec runs a single command with panic recovery so one failing command
// cannot terminate the loop.
func (a *Actor[S]) exec(ctx context.Context, cmd command[S]) {
	defer func() {
		if p := recover(); p != nil {
			a.panics.Add(1)
			a.logger.ErrorContext(ctx, "actor command panicked",
				slog.String("actor", a.name),
				slog.Any("panic", p))
		}
	}()

	cmd(ctx, a.state)
}
