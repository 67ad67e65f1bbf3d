package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/autowhitelist/core/logger"
)

// Check is a named dependency probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Readiness runs every check and answers "READY", or 503 when any fails.
// Each check gets at most timeout; zero means no limit beyond the request context.
//
//	mux.Handle("GET /health/ready", health.Readiness(log, 2*time.Second,
//		health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//		health.Check{Name: "relay", Fn: hub.Healthcheck},
//	))
func Readiness(log *slog.Logger, timeout time.Duration, checks ...Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		for _, c := range checks {
			ctx, cancel := r.Context(), context.CancelFunc(func() {})
			if timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, timeout)
			}
			err := c.Fn(ctx)
			cancel()
			if err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component(c.Name),
					logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, http.StatusText(http.StatusServiceUnavailable))
				return
			}
		}

		_, _ = io.WriteString(w, "READY")
	})
}
