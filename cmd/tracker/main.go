package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/autowhitelist/app/tracker"
	"github.com/dmitrymomot/autowhitelist/core/config"
	"github.com/dmitrymomot/autowhitelist/core/logger"
	"github.com/dmitrymomot/autowhitelist/integration/database/pg"
	"github.com/dmitrymomot/autowhitelist/integration/database/redis"
	"github.com/dmitrymomot/autowhitelist/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg tracker.Config
	config.MustLoad(&cfg) // panic on error

	log := newLogger(cfg)

	// Connect handles retry and ping
	db, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		log.Error("Failed to connect to database", logger.Component("database"), logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db, cfg.DB, log.With(logger.Component("migration"))); err != nil {
		log.Error("Failed to migrate database", logger.Component("database.migration"), logger.Error(err))
		os.Exit(1)
	}

	opts := []tracker.AppOption{
		tracker.WithLogger(log),
		tracker.WithKeyStore(pg.NewKeyStore(db)),
		tracker.WithHealthCheck("postgres", pg.Healthcheck(db)),
	}

	if cfg.RedisIngress {
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Error("Failed to connect to redis", logger.Component("redis"), logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		opts = append(opts, tracker.WithRedis(rdb))
	}

	app, err := tracker.New(cfg, opts...)
	if err != nil {
		log.Error("Failed to create application", logger.Component("app"), logger.Error(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("Failed to run application", logger.Component("app"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}

func newLogger(cfg tracker.Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithContextValue("request_id", middleware.RequestIDContextKey),
	}
	if cfg.IsProduction() {
		opts = append(opts, logger.WithProduction(cfg.AppName))
	} else {
		opts = append(opts, logger.WithDevelopment(cfg.AppName))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		opts = append(opts, logger.WithLevel(level))
	}
	return logger.New(opts...)
}
