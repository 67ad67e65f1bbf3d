package relay

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/dmitrymomot/autowhitelist/core/actor"
	"github.com/dmitrymomot/autowhitelist/core/logger"
)

// ConnID identifies one live connection. Zero is never assigned.
type ConnID uint64

// String returns the hex form used in logs and wire messages.
func (id ConnID) String() string {
	return strconv.FormatUint(uint64(id), 16)
}

// KeyStore resolves a client key to its identity name.
// Implementations return ErrKeyNotFound for unknown keys and must be safe for concurrent use.
type KeyStore interface {
	LookupKey(ctx context.Context, key string) (string, error)
}

// KeyStoreFunc adapts a function to the KeyStore interface.
type KeyStoreFunc func(ctx context.Context, key string) (string, error)

// LookupKey implements KeyStore.
func (f KeyStoreFunc) LookupKey(ctx context.Context, key string) (string, error) {
	return f(ctx, key)
}

// Stats is a point-in-time view of the hub state.
type Stats struct {
	Connections     int   // Registered connections
	BoundKeys       int   // Keys bound to a connection, including stale bindings
	PendingKeys     int   // Keys with queued payloads
	PendingMessages int   // Total queued payloads
	Visitors        int64 // Connections registered since start
	Dropped         int64 // Payloads dropped because a pending queue was full
}

// Hub routes payloads of type P to authenticated connections.
//
// Hub is the handle to a single actor that owns the session registry and the pending
// delivery queues. It is safe for concurrent use; every method is a command processed
// in order by the actor.
type Hub[P any] struct {
	actor          *actor.Actor[*state[P]]
	keys           KeyStore
	outboundBuffer int
	logger         *slog.Logger
}

// New creates a hub that authenticates keys against keys.
// The hub does not process commands until Start or Run is called.
func New[P any](keys KeyStore, opts ...Option) (*Hub[P], error) {
	if keys == nil {
		return nil, ErrKeyStoreNil
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	st := newState[P](options.maxPending, options.logger)

	return &Hub[P]{
		actor: actor.New(st,
			actor.WithName[*state[P]]("relay"),
			actor.WithBufferSize[*state[P]](options.commandBuffer),
			actor.WithLogger[*state[P]](options.logger),
			actor.WithTick[*state[P]](options.retryInterval, retryTick[P]),
		),
		keys:           keys,
		outboundBuffer: options.outboundBuffer,
		logger:         options.logger,
	}, nil
}

// NewFromConfig creates a Hub from configuration.
// Additional options can override config values.
func NewFromConfig[P any](cfg Config, keys KeyStore, opts ...Option) (*Hub[P], error) {
	allOpts := append([]Option{
		WithRetryInterval(cfg.RetryInterval),
		WithMaxPending(cfg.MaxPending),
		WithOutboundBuffer(cfg.OutboundBuffer),
		WithCommandBuffer(cfg.CommandBuffer),
	}, opts...)

	return New[P](keys, allOpts...)
}

// Start runs the hub actor until ctx is cancelled.
func (h *Hub[P]) Start(ctx context.Context) error {
	return h.actor.Start(ctx)
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (h *Hub[P]) Run(ctx context.Context) func() error {
	return h.actor.Run(ctx)
}

// Healthcheck reports whether the hub actor is running.
func (h *Hub[P]) Healthcheck(ctx context.Context) error {
	return h.actor.Healthcheck(ctx)
}

// NewOutbound creates an outbound conduit sized by the hub configuration.
func (h *Hub[P]) NewOutbound() *Outbound[P] {
	return NewOutbound[P](h.outboundBuffer)
}

// Connect registers out and returns a fresh connection ID.
func (h *Hub[P]) Connect(ctx context.Context, out *Outbound[P]) (ConnID, error) {
	id, err := actor.Call(ctx, h.actor, func(_ context.Context, s *state[P]) ConnID {
		return s.connect(out)
	})
	if err != nil {
		return 0, err
	}

	h.logger.DebugContext(ctx, "connection registered", logger.ConnID(id.String()))
	return id, nil
}

// Disconnect removes the connection. Unknown or already removed IDs are ignored.
// Keys bound to the connection keep pointing at it until they are verified again.
func (h *Hub[P]) Disconnect(ctx context.Context, id ConnID) error {
	removed, err := actor.Call(ctx, h.actor, func(_ context.Context, s *state[P]) bool {
		return s.disconnect(id)
	})
	if err != nil {
		return err
	}

	if removed {
		h.logger.DebugContext(ctx, "connection removed", logger.ConnID(id.String()))
	}
	return nil
}

// Verify authenticates key and binds it to the connection, replacing any earlier binding.
// It returns the identity name on success, ErrKeyNotFound for unknown keys, and ErrKeyStore
// joined with the cause when the store query fails. Failed verification changes nothing.
//
// The store is queried on the caller's goroutine; only the binding goes through the actor.
func (h *Hub[P]) Verify(ctx context.Context, key string, id ConnID) (string, error) {
	name, err := h.keys.LookupKey(ctx, key)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		h.logger.InfoContext(ctx, "client presented unknown key", logger.ConnID(id.String()))
		return "", ErrKeyNotFound
	case err != nil:
		h.logger.ErrorContext(ctx, "key store query failed",
			logger.ConnID(id.String()),
			logger.Error(err))
		return "", errors.Join(ErrKeyStore, err)
	}

	if err := h.actor.Do(ctx, func(_ context.Context, s *state[P]) {
		s.bind(key, id)
	}); err != nil {
		return "", err
	}

	h.logger.DebugContext(ctx, "key verified",
		logger.ConnID(id.String()),
		slog.String("name", name))
	return name, nil
}

// Deliver routes p to the connection bound to key. When the key has no live connection,
// its outbound is gone or full, or earlier payloads are still queued, p is appended to the
// key's pending queue and retried on every tick. Delivery failures are never returned;
// the error is non-nil only when the hub itself cannot accept the command.
func (h *Hub[P]) Deliver(ctx context.Context, key string, p P) error {
	return h.actor.Do(ctx, func(actx context.Context, s *state[P]) {
		s.deliver(actx, key, p)
	})
}

// Requeue hands back payloads a connection received but never wrote, oldest first.
// They go to the front of the key's pending queue, ahead of payloads queued since,
// so per-key order is kept across a dropped connection.
func (h *Hub[P]) Requeue(ctx context.Context, key string, payloads []P) error {
	if len(payloads) == 0 {
		return nil
	}
	return h.actor.Do(ctx, func(actx context.Context, s *state[P]) {
		s.requeue(actx, key, payloads)
	})
}

// Pending returns a copy of the payloads queued for key, oldest first.
func (h *Hub[P]) Pending(ctx context.Context, key string) ([]P, error) {
	return actor.Call(ctx, h.actor, func(_ context.Context, s *state[P]) []P {
		return s.snapshot(key)
	})
}

// Retry runs the pending-queue retry immediately instead of waiting for the next tick.
func (h *Hub[P]) Retry(ctx context.Context) error {
	return h.actor.Sweep(ctx)
}

// Stats returns a snapshot of the hub state.
func (h *Hub[P]) Stats(ctx context.Context) (Stats, error) {
	return actor.Call(ctx, h.actor, func(_ context.Context, s *state[P]) Stats {
		return s.stats()
	})
}
