package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/autowhitelist/core/transport"
	"github.com/dmitrymomot/autowhitelist/core/verification"
	"github.com/dmitrymomot/autowhitelist/middleware"
)

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, key string, payload []byte) error {
	return m.Called(ctx, key, payload).Error(0)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Issue(ctx context.Context, identity string) (string, error) {
	args := m.Called(ctx, identity)
	return args.String(0), args.Error(1)
}

func (m *MockVerifier) Validate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDeliverHandler(t *testing.T) {
	t.Parallel()

	newMux := func(d transport.Deliverer) http.Handler {
		mux := http.NewServeMux()
		mux.Handle("POST /deliver/{key}", transport.DeliverHandler(d, discard))
		return middleware.BodyLimit(16)(mux)
	}

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()
		d := &MockDeliverer{}
		d.On("Deliver", mock.Anything, "K1", []byte("steve")).Return(nil).Once()

		rec := serve(newMux(d), httptest.NewRequest(http.MethodPost, "/deliver/K1", strings.NewReader("steve")))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		d.AssertExpectations(t)
	})

	t.Run("empty_payload", func(t *testing.T) {
		t.Parallel()
		d := &MockDeliverer{}
		rec := serve(newMux(d), httptest.NewRequest(http.MethodPost, "/deliver/K1", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		d.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("too_large", func(t *testing.T) {
		t.Parallel()
		d := &MockDeliverer{}
		rec := serve(newMux(d), httptest.NewRequest(http.MethodPost, "/deliver/K1", strings.NewReader(strings.Repeat("x", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("hub_stopped", func(t *testing.T) {
		t.Parallel()
		d := &MockDeliverer{}
		d.On("Deliver", mock.Anything, "K1", mock.Anything).Return(errors.New("stopped")).Once()

		rec := serve(newMux(d), httptest.NewRequest(http.MethodPost, "/deliver/K1", strings.NewReader("x")))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestIssueHandler(t *testing.T) {
	t.Parallel()

	t.Run("json_body", func(t *testing.T) {
		t.Parallel()
		v := &MockVerifier{}
		v.On("Issue", mock.Anything, "owner@example.com").Return("secret", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{"email":" owner@example.com "}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(transport.IssueHandler(v, discard), req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret")
		v.AssertExpectations(t)
	})

	t.Run("form_body", func(t *testing.T) {
		t.Parallel()
		v := &MockVerifier{}
		v.On("Issue", mock.Anything, "owner@example.com").Return("secret", nil).Once()

		form := url.Values{"email": {"owner@example.com"}}
		req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(transport.IssueHandler(v, discard), req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid_identity", verification.ErrInvalidIdentity, http.StatusBadRequest},
		{"transport_failure", errors.Join(verification.ErrTransport, errors.New("smtp")), http.StatusBadGateway},
		{"store_stopped", errors.New("stopped"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := &MockVerifier{}
			v.On("Issue", mock.Anything, mock.Anything).Return("", tt.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{"email":"x@example.com"}`))
			req.Header.Set("Content-Type", "application/json")
			assert.Equal(t, tt.status, serve(transport.IssueHandler(v, discard), req).Code)
		})
	}

	t.Run("malformed_json", func(t *testing.T) {
		t.Parallel()
		v := &MockVerifier{}
		req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		assert.Equal(t, http.StatusBadRequest, serve(transport.IssueHandler(v, discard), req).Code)
	})
}

func TestValidateHandler(t *testing.T) {
	t.Parallel()

	newMux := func(v transport.Verifier) http.Handler {
		mux := http.NewServeMux()
		mux.Handle("GET /verify/{token}", transport.ValidateHandler(v, discard))
		return mux
	}

	t.Run("verified", func(t *testing.T) {
		t.Parallel()
		v := &MockVerifier{}
		v.On("Validate", mock.Anything, "tok").Return("owner@example.com", nil).Once()

		rec := serve(newMux(v), httptest.NewRequest(http.MethodGet, "/verify/tok", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"verified","email":"owner@example.com"}`, rec.Body.String())
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()
		v := &MockVerifier{}
		v.On("Validate", mock.Anything, "tok").Return("", verification.ErrTokenNotFound).Once()

		rec := serve(newMux(v), httptest.NewRequest(http.MethodGet, "/verify/tok", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
