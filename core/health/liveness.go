package health

import (
	"io"
	"net/http"
)

// Liveness indicates the process is running. Always 200 "ALIVE", no dependency checks.
//
//	mux.Handle("GET /health/live", health.Liveness())
func Liveness() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ALIVE")
	})
}
