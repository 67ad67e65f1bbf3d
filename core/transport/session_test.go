package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/autowhitelist/core/relay"
)

// interceptHub runs beforeDisconnect ahead of the real Disconnect so tests can
// deliver while a session is being torn down.
type interceptHub struct {
	*relay.Hub[[]byte]
	beforeDisconnect func()
}

func (h *interceptHub) Disconnect(ctx context.Context, id relay.ConnID) error {
	if h.beforeDisconnect != nil {
		h.beforeDisconnect()
	}
	return h.Hub.Disconnect(ctx, id)
}

func startHub(t *testing.T) *relay.Hub[[]byte] {
	t.Helper()

	keys := relay.KeyStoreFunc(func(_ context.Context, key string) (string, error) {
		if key == "K1" {
			return "survival", nil
		}
		return "", relay.ErrKeyNotFound
	})
	hub, err := relay.New[[]byte](keys, relay.WithRetryInterval(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
	})
	require.Eventually(t, func() bool {
		return hub.Healthcheck(context.Background()) == nil
	}, time.Second, time.Millisecond)
	return hub
}

// verifiedSession registers an outbound for K1 the way serve does before the write loop starts.
func verifiedSession(t *testing.T, hub Hub, conn *websocket.Conn) (*session, *relay.Outbound[[]byte]) {
	t.Helper()
	ctx := context.Background()

	out := hub.NewOutbound()
	id, err := hub.Connect(ctx, out)
	require.NoError(t, err)
	_, err = hub.Verify(ctx, "K1", id)
	require.NoError(t, err)

	return &session{cfg: newWSConfig(), hub: hub, conn: conn, id: id, key: "K1"}, out
}

// serverConn returns the server side of a live WebSocket connection.
func serverConn(t *testing.T) *websocket.Conn {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server connection")
		return nil
	}
}

func pendingStrings(t *testing.T, hub *relay.Hub[[]byte]) []string {
	t.Helper()

	pending, err := hub.Pending(context.Background(), "K1")
	require.NoError(t, err)

	out := make([]string, 0, len(pending))
	for _, p := range pending {
		out = append(out, string(p))
	}
	return out
}

func TestSession_Release(t *testing.T) {
	t.Parallel()

	t.Run("buffered_payloads_keep_order", func(t *testing.T) {
		t.Parallel()

		hub := startHub(t)
		ctx := context.Background()
		s, out := verifiedSession(t, hub, nil)

		for _, p := range []string{"p1", "p2", "p3"} {
			require.NoError(t, hub.Deliver(ctx, "K1", []byte(p)))
		}

		s.release(ctx, out, nil)

		assert.Equal(t, []string{"p1", "p2", "p3"}, pendingStrings(t, hub))
		st, err := hub.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, st.Connections)
	})

	t.Run("delivery_during_teardown_stays_behind", func(t *testing.T) {
		t.Parallel()

		hub := startHub(t)
		ctx := context.Background()
		wrapped := &interceptHub{Hub: hub}
		wrapped.beforeDisconnect = func() {
			assert.NoError(t, hub.Deliver(ctx, "K1", []byte("b")))
		}
		s, out := verifiedSession(t, wrapped, nil)

		require.NoError(t, hub.Deliver(ctx, "K1", []byte("a")))

		s.release(ctx, out, nil)

		assert.Equal(t, []string{"a", "b"}, pendingStrings(t, hub))
	})

	t.Run("unverified_session_requeues_nothing", func(t *testing.T) {
		t.Parallel()

		hub := startHub(t)
		ctx := context.Background()

		out := hub.NewOutbound()
		id, err := hub.Connect(ctx, out)
		require.NoError(t, err)

		s := &session{cfg: newWSConfig(), hub: hub, id: id}
		s.release(ctx, out, nil)

		st, err := hub.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, st.Connections)
		assert.Zero(t, st.PendingKeys)
	})
}

func TestSession_WriteFailure(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	ctx := context.Background()
	conn := serverConn(t)
	s, out := verifiedSession(t, hub, conn)

	for _, p := range []string{"p1", "p2", "p3"} {
		require.NoError(t, hub.Deliver(ctx, "K1", []byte(p)))
	}
	require.NoError(t, conn.Close())

	failed, err := s.writeLoop(ctx, out)
	require.Error(t, err)
	assert.Equal(t, "p1", string(failed))

	s.release(ctx, out, [][]byte{failed})

	assert.Equal(t, []string{"p1", "p2", "p3"}, pendingStrings(t, hub))
}
