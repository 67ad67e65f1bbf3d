package relay

import (
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultRetryInterval is how often queued payloads are retried.
	DefaultRetryInterval = 5 * time.Second

	// DefaultMaxPending bounds each key's pending queue. The oldest payload is dropped when full.
	DefaultMaxPending = 256

	// DefaultOutboundBuffer is the per-connection outbound buffer size.
	DefaultOutboundBuffer = 64

	// DefaultCommandBuffer is the hub command queue capacity.
	DefaultCommandBuffer = 1024
)

// Config holds hub configuration with environment variable support.
type Config struct {
	RetryInterval  time.Duration `env:"RELAY_RETRY_INTERVAL" envDefault:"5s"`
	MaxPending     int           `env:"RELAY_MAX_PENDING" envDefault:"256"` // 0 disables the bound
	OutboundBuffer int           `env:"RELAY_OUTBOUND_BUFFER" envDefault:"64"`
	CommandBuffer  int           `env:"RELAY_COMMAND_BUFFER" envDefault:"1024"`
}

// Option configures a Hub.
type Option func(*hubOptions)

type hubOptions struct {
	retryInterval  time.Duration
	maxPending     int
	outboundBuffer int
	commandBuffer  int
	logger         *slog.Logger
}

func defaultOptions() *hubOptions {
	return &hubOptions{
		retryInterval:  DefaultRetryInterval,
		maxPending:     DefaultMaxPending,
		outboundBuffer: DefaultOutboundBuffer,
		commandBuffer:  DefaultCommandBuffer,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithRetryInterval sets how often pending queues are retried.
func WithRetryInterval(d time.Duration) Option {
	return func(o *hubOptions) {
		if d > 0 {
			o.retryInterval = d
		}
	}
}

// WithMaxPending bounds each key's pending queue. Zero means unbounded.
func WithMaxPending(n int) Option {
	return func(o *hubOptions) {
		if n >= 0 {
			o.maxPending = n
		}
	}
}

// WithOutboundBuffer sets the buffer size used by Hub.NewOutbound.
func WithOutboundBuffer(n int) Option {
	return func(o *hubOptions) {
		if n > 0 {
			o.outboundBuffer = n
		}
	}
}

// WithCommandBuffer sets the hub command queue capacity.
func WithCommandBuffer(n int) Option {
	return func(o *hubOptions) {
		if n > 0 {
			o.commandBuffer = n
		}
	}
}

// WithLogger configures structured logging for the hub.
func WithLogger(logger *slog.Logger) Option {
	return func(o *hubOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
