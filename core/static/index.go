package static

import (
	"io"
	"net/http"
)

// Index answers GET /{id} with the id preceded by a space, as a plain text body.
func Index() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, " "+r.PathValue("id"))
	})
}
