package tracker_test

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/autowhitelist/app/tracker"
	"github.com/dmitrymomot/autowhitelist/core/email"
	"github.com/dmitrymomot/autowhitelist/core/relay"
	"github.com/dmitrymomot/autowhitelist/core/server"
	"github.com/dmitrymomot/autowhitelist/core/transport"
)

type outbox struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (o *outbox) SendEmail(_ context.Context, p email.SendEmailParams) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, p)
	return nil
}

func (o *outbox) last() (email.SendEmailParams, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return email.SendEmailParams{}, false
	}
	return o.sent[len(o.sent)-1], true
}

var linkRe = regexp.MustCompile(`/verify/([0-9a-f-]{36})`)

func startApp(t *testing.T, mail email.EmailSender) string {
	t.Helper()

	cfg := tracker.Config{
		AppName:         "tracker-test",
		ResourcesDir:    t.TempDir(),
		MaxPayloadBytes: 1024,
	}
	cfg.Relay.RetryInterval = time.Hour
	cfg.Verification.LinkBase = "http://tracker.test/verify/"

	keys := relay.KeyStoreFunc(func(_ context.Context, key string) (string, error) {
		if key == "K1" {
			return "survival", nil
		}
		return "", relay.ErrKeyNotFound
	})

	app, err := tracker.New(cfg,
		tracker.WithKeyStore(keys),
		tracker.WithEmailSender(mail),
		tracker.WithServer(server.New("127.0.0.1:0", server.WithShutdownTimeout(time.Second))),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("app did not stop")
		}
	})

	addrCtx, addrCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer addrCancel()
	addr, err := app.Addr(addrCtx)
	require.NoError(t, err)

	base := "http://" + addr.String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health/ready")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	return base
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestNew_RequiresKeyStore(t *testing.T) {
	t.Parallel()

	_, err := tracker.New(tracker.Config{}, tracker.WithEmailSender(&outbox{}))
	assert.ErrorIs(t, err, tracker.ErrKeyStoreRequired)
}

func TestNew_ProductionRequiresPostmark(t *testing.T) {
	t.Parallel()

	keys := relay.KeyStoreFunc(func(context.Context, string) (string, error) { return "", relay.ErrKeyNotFound })
	_, err := tracker.New(tracker.Config{Env: "production"}, tracker.WithKeyStore(keys))
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestApp_EndToEnd(t *testing.T) {
	t.Parallel()

	mail := &outbox{}
	base := startApp(t, mail)

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(base + "/health/live")
		require.NoError(t, err)
		assert.Equal(t, "ALIVE", body(t, resp))

		resp, err = http.Get(base + "/health/ready")
		require.NoError(t, err)
		assert.Equal(t, "READY", body(t, resp))
	})

	t.Run("index", func(t *testing.T) {
		resp, err := http.Get(base + "/1234")
		require.NoError(t, err)
		assert.Equal(t, " 1234", body(t, resp))
	})

	t.Run("websocket_delivery", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws", nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("K1")))
		var msg transport.Message
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, "survival", msg.Name)

		resp, err := http.Post(base+"/deliver/K1", "application/json", strings.NewReader(`{"player":"steve"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		_ = resp.Body.Close()

		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, `{"player":"steve"}`, string(data))
	})

	t.Run("email_verification", func(t *testing.T) {
		resp, err := http.Post(base+"/verify", "application/json", strings.NewReader(`{"email":"owner@example.com"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		_ = resp.Body.Close()

		sent, ok := mail.last()
		require.True(t, ok)
		m := linkRe.FindStringSubmatch(sent.BodyHTML)
		require.Len(t, m, 2)

		resp, err = http.Get(base + "/verify/" + m[1])
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body(t, resp), "owner@example.com")

		resp, err = http.Get(base + "/verify/" + m[1])
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
