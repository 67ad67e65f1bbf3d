package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/autowhitelist/core/email"
	"github.com/dmitrymomot/autowhitelist/core/health"
	"github.com/dmitrymomot/autowhitelist/core/ingress"
	"github.com/dmitrymomot/autowhitelist/core/logger"
	"github.com/dmitrymomot/autowhitelist/core/relay"
	"github.com/dmitrymomot/autowhitelist/core/server"
	"github.com/dmitrymomot/autowhitelist/core/static"
	"github.com/dmitrymomot/autowhitelist/core/transport"
	"github.com/dmitrymomot/autowhitelist/core/verification"
	"github.com/dmitrymomot/autowhitelist/integration/database/redis"
	"github.com/dmitrymomot/autowhitelist/integration/email/postmark"
	"github.com/dmitrymomot/autowhitelist/middleware"
)

var (
	ErrKeyStoreRequired = errors.New("key store is required")
	ErrNilOption        = errors.New("option value cannot be nil")
)

// App wires the relay hub, the verification store, the producer ingress
// and the HTTP surface into one runnable unit.
type App struct {
	config  Config
	logger  *slog.Logger
	keys    relay.KeyStore
	sender  email.EmailSender
	redis   goredis.UniversalClient
	checks  []health.Check
	hub     *relay.Hub[[]byte]
	store   *verification.Store
	ingress *ingress.Subscriber
	server  *server.Server
}

// AppOption configures an App. Options returning an error abort New.
type AppOption func(*App) error

// New builds the application from configuration. A key store is required;
// the email sender is chosen from cfg unless WithEmailSender is given.
func New(cfg Config, opts ...AppOption) (*App, error) {
	app := &App{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.keys == nil {
		return nil, ErrKeyStoreRequired
	}

	if app.sender == nil {
		sender, err := newSender(cfg, app.logger)
		if err != nil {
			return nil, err
		}
		app.sender = sender
	}

	hub, err := relay.NewFromConfig[[]byte](cfg.Relay, app.keys,
		relay.WithLogger(app.logger.With(logger.Component("relay"))))
	if err != nil {
		return nil, err
	}
	app.hub = hub

	store, err := verification.NewFromConfig(cfg.Verification, app.sender,
		verification.WithLogger(app.logger.With(logger.Component("verification"))))
	if err != nil {
		return nil, err
	}
	app.store = store

	if app.redis != nil && cfg.RedisIngress {
		sub, err := ingress.NewFromConfig(cfg.Ingress, app.redis, hub,
			ingress.WithLogger(app.logger.With(logger.Component("ingress"))))
		if err != nil {
			return nil, err
		}
		app.ingress = sub
	}

	if app.server == nil {
		srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(app.logger.With(logger.Component("server"))))
		if err != nil {
			return nil, err
		}
		app.server = srv
	}

	return app, nil
}

func newSender(cfg Config, log *slog.Logger) (email.EmailSender, error) {
	if cfg.Postmark.Enabled() {
		return postmark.New(cfg.Postmark)
	}
	if cfg.IsProduction() {
		return nil, errors.Join(email.ErrInvalidConfig, errors.New("postmark credentials are required in production"))
	}
	log.Warn("postmark not configured, verification emails are written to disk",
		slog.String("dir", cfg.DevEmailDir))
	return email.NewDevSender(cfg.DevEmailDir), nil
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) AppOption {
	return func(app *App) error {
		if l == nil {
			return ErrNilOption
		}
		app.logger = l
		return nil
	}
}

// WithKeyStore sets the store client keys are verified against.
func WithKeyStore(keys relay.KeyStore) AppOption {
	return func(app *App) error {
		if keys == nil {
			return ErrNilOption
		}
		app.keys = keys
		return nil
	}
}

// WithEmailSender overrides the sender picked from configuration.
func WithEmailSender(sender email.EmailSender) AppOption {
	return func(app *App) error {
		if sender == nil {
			return ErrNilOption
		}
		app.sender = sender
		return nil
	}
}

// WithRedis enables the Redis ingress and adds Redis to the readiness checks.
func WithRedis(client goredis.UniversalClient) AppOption {
	return func(app *App) error {
		if client == nil {
			return ErrNilOption
		}
		app.redis = client
		app.checks = append(app.checks, health.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		return nil
	}
}

// WithServer replaces the HTTP server built from cfg.Server.
func WithServer(srv *server.Server) AppOption {
	return func(app *App) error {
		if srv == nil {
			return ErrNilOption
		}
		app.server = srv
		return nil
	}
}

// WithHealthCheck adds a dependency probe to GET /health/ready.
func WithHealthCheck(name string, fn func(context.Context) error) AppOption {
	return func(app *App) error {
		if fn == nil {
			return ErrNilOption
		}
		app.checks = append(app.checks, health.Check{Name: name, Fn: fn})
		return nil
	}
}

// Hub returns the relay hub.
func (a *App) Hub() *relay.Hub[[]byte] {
	return a.hub
}

// Handler builds the HTTP routes. WebSocket sessions are closed once ctx is done.
func (a *App) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	wsOpts := []transport.WebSocketOption{
		transport.WithWSLogger(a.logger.With(logger.Component("websocket"))),
		transport.WithWSShutdown(ctx),
	}
	if a.config.AllowAnyOrigin {
		wsOpts = append(wsOpts, transport.WithWSAllowAnyOrigin())
	}
	mux.Handle("GET /ws", transport.WebSocket(a.hub, wsOpts...))
	mux.Handle("POST /deliver/{key}", transport.DeliverHandler(a.hub, a.logger))
	mux.Handle("POST /verify", transport.IssueHandler(a.store, a.logger))
	mux.Handle("GET /verify/{token}", transport.ValidateHandler(a.store, a.logger))

	mux.Handle("GET /health/live", health.Liveness())
	checks := append([]health.Check{
		{Name: "relay", Fn: a.hub.Healthcheck},
		{Name: "verification", Fn: a.store.Healthcheck},
	}, a.checks...)
	if a.ingress != nil {
		checks = append(checks, health.Check{Name: "ingress", Fn: a.ingress.Healthcheck})
	}
	mux.Handle("GET /health/ready", health.Readiness(a.logger, 2*time.Second, checks...))

	if resources, err := static.Dir(a.config.ResourcesDir); err == nil {
		mux.Handle("GET /resources/{filename...}", resources)
	} else if !errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("resources directory not served", logger.Error(err))
	}
	mux.Handle("GET /{id}", static.Index())

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recover(a.logger),
		middleware.Logging(a.logger),
		middleware.BodyLimit(a.config.MaxPayloadBytes),
	)
}

// Addr returns the address the HTTP server is bound to once it is listening.
func (a *App) Addr(ctx context.Context) (net.Addr, error) {
	return a.server.Addr(ctx)
}

// Run starts every component and blocks until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(a.hub.Run(ctx))
	eg.Go(a.store.Run(ctx))
	if a.ingress != nil {
		eg.Go(a.ingress.Run(ctx))
	}
	eg.Go(a.server.Run(ctx, a.Handler(ctx)))

	a.logger.InfoContext(ctx, "tracker started",
		slog.String("app", a.config.AppName),
		slog.Bool("redis_ingress", a.ingress != nil))

	return eg.Wait()
}
