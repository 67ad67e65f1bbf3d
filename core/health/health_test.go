package health_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/autowhitelist/core/health"
)

func get(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec := get(health.Liveness())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := health.Check{Name: "ok", Fn: func(context.Context) error { return nil }}

	t.Run("all_pass", func(t *testing.T) {
		t.Parallel()
		rec := get(health.Readiness(slog.Default(), time.Second, ok, ok))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())
	})

	t.Run("one_fails", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))

		failing := health.Check{Name: "postgres", Fn: func(context.Context) error { return errors.New("down") }}
		rec := get(health.Readiness(log, time.Second, ok, failing))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, buf.String(), "component=postgres")
	})

	t.Run("timeout_applies", func(t *testing.T) {
		t.Parallel()
		slow := health.Check{Name: "slow", Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}}
		rec := get(health.Readiness(slog.Default(), 10*time.Millisecond, slow))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
