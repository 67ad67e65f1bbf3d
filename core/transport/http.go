package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrymomot/autowhitelist/core/logger"
	"github.com/dmitrymomot/autowhitelist/core/verification"
)

// DeliverHandler accepts producer payloads over HTTP: POST /deliver/{key}.
// The request body is the payload. The response is 202 once the hub accepted it,
// whether it was sent immediately or queued.
func DeliverHandler(hub Deliverer, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		if key == "" {
			writeError(w, http.StatusBadRequest, "missing key")
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
				return
			}
			writeError(w, http.StatusBadRequest, "failed to read payload")
			return
		}
		if len(payload) == 0 {
			writeError(w, http.StatusBadRequest, "empty payload")
			return
		}

		if err := hub.Deliver(r.Context(), key, payload); err != nil {
			log.ErrorContext(r.Context(), "hub rejected delivery", logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "hub unavailable")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	})
}

// Verifier is the part of verification.Store the HTTP handlers use.
type Verifier interface {
	Issue(ctx context.Context, identity string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
}

type issueRequest struct {
	Email string `json:"email"`
}

// IssueHandler starts email verification: POST /verify with a JSON body
// {"email": "..."} or a form field email. The token is only ever sent by email.
func IssueHandler(store Verifier, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address, err := readEmail(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		_, err = store.Issue(r.Context(), address)
		switch {
		case errors.Is(err, verification.ErrInvalidIdentity):
			writeError(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, verification.ErrTransport):
			writeError(w, http.StatusBadGateway, "verification email could not be sent")
		case err != nil:
			log.ErrorContext(r.Context(), "verification issue failed", logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "verification unavailable")
		default:
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
		}
	})
}

// ValidateHandler completes verification: GET /verify/{token}.
func ValidateHandler(store Verifier, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := store.Validate(r.Context(), r.PathValue("token"))
		switch {
		case errors.Is(err, verification.ErrTokenNotFound):
			writeError(w, http.StatusNotFound, "token not found or expired")
		case err != nil:
			log.ErrorContext(r.Context(), "verification validate failed", logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "verification unavailable")
		default:
			writeJSON(w, http.StatusOK, map[string]string{"status": "verified", "email": identity})
		}
	})
}

func readEmail(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req issueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return strings.TrimSpace(req.Email), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.PostForm.Get("email")), nil
}
