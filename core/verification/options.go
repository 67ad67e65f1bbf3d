package verification

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = time.Minute
	DefaultSubject       = "Confirm your email address"
	DefaultLinkBase      = "http://localhost:8080/verify/"
)

// Config holds store configuration with environment variable support.
type Config struct {
	TTL           time.Duration `env:"VERIFICATION_TTL" envDefault:"1h"`
	SweepInterval time.Duration `env:"VERIFICATION_SWEEP_INTERVAL" envDefault:"1m"`
	LinkBase      string        `env:"VERIFICATION_LINK_BASE" envDefault:"http://localhost:8080/verify/"`
	Subject       string        `env:"VERIFICATION_SUBJECT" envDefault:"Confirm your email address"`
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	ttl           time.Duration
	sweepInterval time.Duration
	linkBase      string
	subject       string
	logger        *slog.Logger
	now           func() time.Time
	newToken      func() string
}

func defaultOptions() *storeOptions {
	return &storeOptions{
		ttl:           DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		linkBase:      DefaultLinkBase,
		subject:       DefaultSubject,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           time.Now,
		newToken:      func() string { return uuid.New().String() },
	}
}

// WithTTL sets how long an issued token stays valid.
func WithTTL(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithSweepInterval sets how often expired tokens are evicted.
func WithSweepInterval(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// WithLinkBase sets the URL prefix the token is appended to in the email.
func WithLinkBase(base string) Option {
	return func(o *storeOptions) {
		if base != "" {
			o.linkBase = base
		}
	}
}

// WithSubject sets the verification email subject.
func WithSubject(subject string) Option {
	return func(o *storeOptions) {
		if subject != "" {
			o.subject = subject
		}
	}
}

// WithLogger configures structured logging for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for issue timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTokenGenerator overrides the token generator. Tokens must be unique.
func WithTokenGenerator(fn func() string) Option {
	return func(o *storeOptions) {
		if fn != nil {
			o.newToken = fn
		}
	}
}
