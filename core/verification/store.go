package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/autowhitelist/core/actor"
	"github.com/dmitrymomot/autowhitelist/core/email"
	"github.com/dmitrymomot/autowhitelist/core/email/templates"
	"github.com/dmitrymomot/autowhitelist/core/logger"
)

type entry struct {
	identity string
	issued   time.Time
}

type tokens struct {
	ttl     time.Duration
	entries map[string]entry
	logger  *slog.Logger
}

// expired reports whether e is at least ttl old at now.
func (t *tokens) expired(e entry, now time.Time) bool {
	return now.Sub(e.issued) >= t.ttl
}

func sweep(ctx context.Context, t *tokens, now time.Time) {
	removed := 0
	for token, e := range t.entries {
		if t.expired(e, now) {
			delete(t.entries, token)
			removed++
		}
	}
	if removed > 0 {
		t.logger.DebugContext(ctx, "expired verification tokens removed",
			logger.Count("removed", removed),
			slog.Int("remaining", len(t.entries)))
	}
}

// Store issues single-use verification tokens and validates them within a TTL.
// Token state is owned by an actor; the email is sent on the caller goroutine.
type Store struct {
	actor    *actor.Actor[*tokens]
	sender   email.EmailSender
	linkBase string
	subject  string
	now      func() time.Time
	newToken func() string
	logger   *slog.Logger
}

// New creates a store that delivers tokens through sender.
// The store does not process commands until Start or Run is called.
func New(sender email.EmailSender, opts ...Option) (*Store, error) {
	if sender == nil {
		return nil, ErrSenderNil
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	st := &tokens{
		ttl:     options.ttl,
		entries: make(map[string]entry),
		logger:  options.logger,
	}

	return &Store{
		actor: actor.New(st,
			actor.WithName[*tokens]("verification"),
			actor.WithLogger[*tokens](options.logger),
			actor.WithClock[*tokens](options.now),
			actor.WithTick[*tokens](options.sweepInterval, sweep),
		),
		sender:   sender,
		linkBase: options.linkBase,
		subject:  options.subject,
		now:      options.now,
		newToken: options.newToken,
		logger:   options.logger,
	}, nil
}

// NewFromConfig creates a Store from configuration.
// Additional options can override config values.
func NewFromConfig(cfg Config, sender email.EmailSender, opts ...Option) (*Store, error) {
	allOpts := append([]Option{
		WithTTL(cfg.TTL),
		WithSweepInterval(cfg.SweepInterval),
		WithLinkBase(cfg.LinkBase),
		WithSubject(cfg.Subject),
	}, opts...)

	return New(sender, allOpts...)
}

// Start runs the store actor until ctx is cancelled.
func (s *Store) Start(ctx context.Context) error {
	return s.actor.Start(ctx)
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (s *Store) Run(ctx context.Context) func() error {
	return s.actor.Run(ctx)
}

// Healthcheck reports whether the store actor is running.
func (s *Store) Healthcheck(ctx context.Context) error {
	return s.actor.Healthcheck(ctx)
}

// Issue generates a token for identity and emails a verification link to it.
// The token is recorded only after the email was sent; on send failure nothing
// is recorded and ErrTransport joined with the cause is returned.
func (s *Store) Issue(ctx context.Context, identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if !email.IsValidAddress(identity) {
		return "", ErrInvalidIdentity
	}

	token := s.newToken()
	body, err := templates.Render(ctx, templates.Verification(s.linkBase+token))
	if err != nil {
		return "", err
	}

	if err := s.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   identity,
		Subject:  s.subject,
		BodyHTML: body,
		Tag:      "verification",
	}); err != nil {
		s.logger.WarnContext(ctx, "verification email not sent", logger.Error(err))
		return "", errors.Join(ErrTransport, err)
	}

	// The email is out, so the token is recorded even if the caller has gone away.
	issued := s.now()
	if _, err := actor.Call(context.WithoutCancel(ctx), s.actor, func(_ context.Context, t *tokens) struct{} {
		t.entries[token] = entry{identity: identity, issued: issued}
		return struct{}{}
	}); err != nil {
		return "", err
	}

	s.logger.DebugContext(ctx, "verification token issued", logger.Event("token_issued"))
	return token, nil
}

// Validate consumes token and returns the identity it was issued for.
// Unknown, used and expired tokens yield ErrTokenNotFound.
func (s *Store) Validate(ctx context.Context, token string) (string, error) {
	now := s.now()
	e, err := actor.Call(ctx, s.actor, func(_ context.Context, t *tokens) *entry {
		e, ok := t.entries[token]
		if !ok {
			return nil
		}
		delete(t.entries, token)
		if t.expired(e, now) {
			return nil
		}
		return &e
	})
	if err != nil {
		return "", err
	}
	if e == nil {
		return "", ErrTokenNotFound
	}
	return e.identity, nil
}

// Len returns the number of tokens currently held, including expired ones not yet swept.
func (s *Store) Len(ctx context.Context) (int, error) {
	return actor.Call(ctx, s.actor, func(_ context.Context, t *tokens) int {
		return len(t.entries)
	})
}

// Sweep evicts expired tokens immediately instead of waiting for the next tick.
func (s *Store) Sweep(ctx context.Context) error {
	return s.actor.Sweep(ctx)
}

// Stats returns the underlying actor counters.
func (s *Store) Stats() actor.Stats {
	return s.actor.Stats()
}
