package ingress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/autowhitelist/core/logger"
)

const DefaultPattern = "tracker:updates:*"

var (
	ErrInvalidPattern  = errors.New("channel pattern must end with '*'")
	ErrInvalidChannel  = errors.New("channel does not carry a key")
	ErrAlreadyRunning  = errors.New("subscriber is already running")
	ErrDelivererNil    = errors.New("deliverer is nil")
	ErrSubscribeFailed = errors.New("failed to subscribe to update channels")
)

// Deliverer accepts a payload addressed to a client key. relay.Hub satisfies it.
type Deliverer interface {
	Deliver(ctx context.Context, key string, payload []byte) error
}

// Config holds subscriber configuration.
type Config struct {
	Pattern string `env:"INGRESS_CHANNEL_PATTERN" envDefault:"tracker:updates:*"`
}

// Stats holds subscriber counters.
type Stats struct {
	Received  int64
	Delivered int64
	Rejected  int64
}

// Subscriber forwards messages published on Redis channels matching a pattern to a Deliverer.
// The part of the channel name matched by the trailing '*' is the client key;
// the message body is the payload.
type Subscriber struct {
	client  goredis.UniversalClient
	dst     Deliverer
	pattern string
	prefix  string
	logger  *slog.Logger

	running   atomic.Bool
	received  atomic.Int64
	delivered atomic.Int64
	rejected  atomic.Int64
}

// Option configures a Subscriber.
type Option func(*Subscriber)

// WithPattern sets the PSUBSCRIBE pattern. It must end with '*'.
func WithPattern(pattern string) Option {
	return func(s *Subscriber) {
		if pattern != "" {
			s.pattern = pattern
		}
	}
}

// WithLogger configures structured logging for the subscriber.
func WithLogger(l *slog.Logger) Option {
	return func(s *Subscriber) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a subscriber. client may be nil when only Handle is used.
func New(client goredis.UniversalClient, dst Deliverer, opts ...Option) (*Subscriber, error) {
	if dst == nil {
		return nil, ErrDelivererNil
	}

	s := &Subscriber{
		client:  client,
		dst:     dst,
		pattern: DefaultPattern,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	prefix, ok := strings.CutSuffix(s.pattern, "*")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, s.pattern)
	}
	s.prefix = prefix
	return s, nil
}

// NewFromConfig creates a Subscriber from configuration.
func NewFromConfig(cfg Config, client goredis.UniversalClient, dst Deliverer, opts ...Option) (*Subscriber, error) {
	return New(client, dst, append([]Option{WithPattern(cfg.Pattern)}, opts...)...)
}

// Start subscribes and forwards messages until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	pubsub := s.client.PSubscribe(ctx, s.pattern)
	defer func() { _ = pubsub.Close() }()

	// Wait for the subscription confirmation so startup failures surface here.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Join(ErrSubscribeFailed, err)
	}

	s.logger.InfoContext(ctx, "ingress subscribed", slog.String("pattern", s.pattern))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(context.Background(), "ingress stopping")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := s.Handle(ctx, msg.Channel, []byte(msg.Payload)); err != nil {
				s.logger.WarnContext(ctx, "update not forwarded",
					slog.String("channel", msg.Channel),
					logger.Error(err))
			}
		}
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (s *Subscriber) Run(ctx context.Context) func() error {
	return func() error {
		return s.Start(ctx)
	}
}

// Healthcheck reports whether the subscription loop is active.
func (s *Subscriber) Healthcheck(context.Context) error {
	if !s.running.Load() {
		return errors.Join(ErrSubscribeFailed, errors.New("subscriber is not running"))
	}
	return nil
}

// Handle forwards one message published on channel.
func (s *Subscriber) Handle(ctx context.Context, channel string, payload []byte) error {
	s.received.Add(1)

	key, err := s.KeyFromChannel(channel)
	if err != nil {
		s.rejected.Add(1)
		return err
	}
	if err := s.dst.Deliver(ctx, key, payload); err != nil {
		s.rejected.Add(1)
		return err
	}
	s.delivered.Add(1)
	return nil
}

// KeyFromChannel extracts the client key from a channel name matched by the pattern.
func (s *Subscriber) KeyFromChannel(channel string) (string, error) {
	key, ok := strings.CutPrefix(channel, s.prefix)
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, channel)
	}
	return key, nil
}

// Stats returns the subscriber counters.
func (s *Subscriber) Stats() Stats {
	return Stats{
		Received:  s.received.Load(),
		Delivered: s.delivered.Load(),
		Rejected:  s.rejected.Load(),
	}
}
