package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/autowhitelist/core/relay"
)

var (
	ErrAuthTimeout = errors.New("client did not present a key in time")
	ErrBadKeyFrame = errors.New("key must be sent as a text frame")
)

// Hub is the part of relay.Hub the transport uses.
type Hub interface {
	NewOutbound() *relay.Outbound[[]byte]
	Connect(ctx context.Context, out *relay.Outbound[[]byte]) (relay.ConnID, error)
	Disconnect(ctx context.Context, id relay.ConnID) error
	Verify(ctx context.Context, key string, id relay.ConnID) (string, error)
	Requeue(ctx context.Context, key string, payloads [][]byte) error
	Deliverer
}

// Deliverer accepts a payload addressed to a client key.
type Deliverer interface {
	Deliver(ctx context.Context, key string, payload []byte) error
}

// Message is a control frame sent to WebSocket clients.
type Message struct {
	Type  string `json:"type"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

const (
	MessageVerified = "verified"
	MessageError    = "error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
