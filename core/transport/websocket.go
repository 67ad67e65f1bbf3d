package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/autowhitelist/core/logger"
	"github.com/dmitrymomot/autowhitelist/core/relay"
)

type wsConfig struct {
	upgrader     *websocket.Upgrader
	authTimeout  time.Duration
	writeTimeout time.Duration
	pingInterval time.Duration
	maxKeySize   int64
	shutdown     context.Context
	logger       *slog.Logger
}

// WebSocketOption configures the WebSocket handler.
type WebSocketOption func(*wsConfig)

// WithWSReadBuffer sets the upgrader read buffer size in bytes.
func WithWSReadBuffer(size int) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.ReadBufferSize = size
	}
}

// WithWSWriteBuffer sets the upgrader write buffer size in bytes.
func WithWSWriteBuffer(size int) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.WriteBufferSize = size
	}
}

// WithWSHandshakeTimeout bounds the upgrade handshake.
func WithWSHandshakeTimeout(timeout time.Duration) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

// WithWSOriginCheck replaces the same-origin check run on upgrade.
func WithWSOriginCheck(fn func(r *http.Request) bool) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.CheckOrigin = fn
	}
}

// WithWSAllowAnyOrigin accepts upgrades from any origin.
func WithWSAllowAnyOrigin() WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
}

// WithWSAuthTimeout bounds how long a client may take to send its key.
func WithWSAuthTimeout(d time.Duration) WebSocketOption {
	return func(c *wsConfig) {
		if d > 0 {
			c.authTimeout = d
		}
	}
}

// WithWSWriteTimeout bounds each frame write.
func WithWSWriteTimeout(d time.Duration) WebSocketOption {
	return func(c *wsConfig) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithWSPingInterval sets the keepalive ping period. The read deadline is twice the interval.
func WithWSPingInterval(d time.Duration) WebSocketOption {
	return func(c *wsConfig) {
		if d > 0 {
			c.pingInterval = d
		}
	}
}

// WithWSShutdown ends every session with a going-away close frame once ctx is done.
// Hijacked connections outlive http.Server.Shutdown, so this is how sessions learn about it.
func WithWSShutdown(ctx context.Context) WebSocketOption {
	return func(c *wsConfig) {
		c.shutdown = ctx
	}
}

// WithWSLogger configures structured logging for sessions.
func WithWSLogger(l *slog.Logger) WebSocketOption {
	return func(c *wsConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WebSocket serves client sessions. The first text frame a client sends is its key.
// The handler verifies it, replies with a "verified" or "error" message, and then
// forwards every payload delivered to the key as one text frame. Frames the client
// sends after verification are discarded.
func WebSocket(hub Hub, opts ...WebSocketOption) http.Handler {
	cfg := newWSConfig(opts...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := cfg.upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.logger.DebugContext(r.Context(), "websocket upgrade failed", logger.Error(err))
			return
		}
		defer func() { _ = conn.Close() }()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		if cfg.shutdown != nil {
			stop := context.AfterFunc(cfg.shutdown, cancel)
			defer stop()
		}

		s := &session{cfg: cfg, hub: hub, conn: conn}
		if err := s.serve(ctx); err != nil {
			cfg.logger.DebugContext(r.Context(), "websocket session ended",
				logger.ConnID(s.id.String()),
				logger.Error(err))
		}
	})
}

func newWSConfig(opts ...WebSocketOption) *wsConfig {
	cfg := &wsConfig{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		authTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
		pingInterval: 30 * time.Second,
		maxKeySize:   4096,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

type session struct {
	cfg  *wsConfig
	hub  Hub
	conn *websocket.Conn
	id   relay.ConnID
	key  string
}

func (s *session) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := s.hub.NewOutbound()
	id, err := s.hub.Connect(ctx, out)
	if err != nil {
		s.closeWith(websocket.CloseTryAgainLater, "server unavailable")
		return err
	}
	s.id = id

	var unsent [][]byte
	defer func() { s.release(context.WithoutCancel(ctx), out, unsent) }()

	name, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	if err := s.writeJSON(Message{Type: MessageVerified, Name: name}); err != nil {
		return err
	}

	go s.readLoop(cancel)
	failed, err := s.writeLoop(ctx, out)
	if failed != nil {
		unsent = append(unsent, failed)
	}
	return err
}

func (s *session) authenticate(ctx context.Context) (string, error) {
	s.conn.SetReadLimit(s.cfg.maxKeySize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.authTimeout))

	msgType, data, err := s.conn.ReadMessage()
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", ErrAuthTimeout
		}
		return "", err
	}
	if msgType != websocket.TextMessage {
		s.reject("key must be sent as a text frame")
		return "", ErrBadKeyFrame
	}

	key := strings.TrimSpace(string(data))
	name, err := s.hub.Verify(ctx, key, s.id)
	switch {
	case errors.Is(err, relay.ErrKeyNotFound):
		s.reject("unknown key")
		return "", err
	case err != nil:
		s.reject("verification unavailable")
		return "", err
	}
	s.key = key
	return name, nil
}

// readLoop keeps the read side serviced so control frames are processed,
// and cancels the session when the client goes away.
func (s *session) readLoop(cancel context.CancelFunc) {
	defer cancel()

	deadline := 2 * s.cfg.pingInterval
	_ = s.conn.SetReadDeadline(time.Now().Add(deadline))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(deadline))
	}
}

// writeLoop forwards payloads until ctx is done or a write fails.
// The payload whose write failed is returned so it can be handed back in order.
func (s *session) writeLoop(ctx context.Context, out *relay.Outbound[[]byte]) ([]byte, error) {
	ping := time.NewTicker(s.cfg.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.cfg.shutdown != nil && s.cfg.shutdown.Err() != nil {
				s.closeWith(websocket.CloseGoingAway, "server shutting down")
			} else {
				s.closeWith(websocket.CloseNormalClosure, "")
			}
			return nil, nil
		case p := <-out.C():
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, p); err != nil {
				return p, err
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.writeTimeout)); err != nil {
				return nil, err
			}
		}
	}
}

// release unregisters the session and hands unsent payloads back to the hub.
// unsent comes first, then whatever is still buffered in out. Disconnect runs before
// the drain so the hub cannot send into out once it is collected.
func (s *session) release(ctx context.Context, out *relay.Outbound[[]byte], unsent [][]byte) {
	out.Close()
	_ = s.hub.Disconnect(ctx, s.id)

	if s.key == "" {
		return
	}

drain:
	for {
		select {
		case p := <-out.C():
			unsent = append(unsent, p)
		default:
			break drain
		}
	}

	if err := s.hub.Requeue(ctx, s.key, unsent); err != nil {
		s.cfg.logger.WarnContext(ctx, "unsent payloads lost",
			logger.ConnID(s.id.String()),
			logger.Count("payloads", len(unsent)),
			logger.Error(err))
	}
}

func (s *session) writeJSON(m Message) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.writeTimeout))
	return s.conn.WriteJSON(m)
}

func (s *session) reject(reason string) {
	_ = s.writeJSON(Message{Type: MessageError, Error: reason})
	s.closeWith(websocket.ClosePolicyViolation, reason)
}

func (s *session) closeWith(code int, reason string) {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(s.cfg.writeTimeout))
}
