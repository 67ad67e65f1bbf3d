// Package logger provides structured logging utilities built on Go's standard slog package:
// a logger factory with environment presets and nil-safe attribute helpers.
//
// # Basic Usage
//
//	log := logger.New(logger.WithDevelopment("tracker"))
//	log.Info("hub started", logger.Component("relay"), logger.Event("startup"))
//
//	log = logger.New(
//		logger.WithProduction("tracker"),
//		logger.WithLevel(slog.LevelWarn),
//		logger.WithOutput(os.Stderr),
//	)
//
// # Context Values
//
// WithContextValue and WithContextExtractors decorate the handler so request-scoped
// values stored in the context are added to every *Context log call:
//
//	log := logger.New(logger.WithContextValue("conn_id", connIDKey{}))
//	log.InfoContext(ctx, "client verified")
//
// # Attribute Helpers
//
//	log.Error("key store query failed", logger.Error(err), logger.ConnID(id.String()))
//	log.Info("request", logger.Method(r.Method), logger.Path(r.URL.Path), logger.StatusCode(200))
package logger
