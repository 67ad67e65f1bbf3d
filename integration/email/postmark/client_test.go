package postmark_test

import (
	"context"
	"errors"
	"testing"

	pm "github.com/mrz1836/postmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/autowhitelist/core/email"
	"github.com/dmitrymomot/autowhitelist/integration/email/postmark"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SendEmail(ctx context.Context, e pm.Email) (pm.EmailResponse, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(pm.EmailResponse), args.Error(1)
}

var validConfig = postmark.Config{
	PostmarkServerToken:  "server",
	PostmarkAccountToken: "account",
	SenderEmail:          "noreply@example.com",
	SupportEmail:         "support@example.com",
}

var validParams = email.SendEmailParams{
	SendTo:   "owner@example.com",
	Subject:  "Verify",
	BodyHTML: "<p>hi</p>",
	Tag:      "verification",
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires tokens", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig
		cfg.PostmarkAccountToken = ""
		_, err := postmark.New(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("requires valid sender", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig
		cfg.SenderEmail = "nope"
		_, err := postmark.NewWithAPI(&MockAPI{}, cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("nil api", func(t *testing.T) {
		t.Parallel()
		_, err := postmark.NewWithAPI(nil, validConfig)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		c, err := postmark.New(validConfig)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("maps params to postmark email", func(t *testing.T) {
		t.Parallel()
		api := &MockAPI{}
		api.On("SendEmail", mock.Anything, mock.MatchedBy(func(e pm.Email) bool {
			return e.From == validConfig.SenderEmail &&
				e.ReplyTo == validConfig.SupportEmail &&
				e.To == validParams.SendTo &&
				e.Subject == validParams.Subject &&
				e.HTMLBody == validParams.BodyHTML &&
				e.Tag == validParams.Tag
		})).Return(pm.EmailResponse{}, nil).Once()

		c, err := postmark.NewWithAPI(api, validConfig)
		require.NoError(t, err)
		require.NoError(t, c.SendEmail(context.Background(), validParams))
		api.AssertExpectations(t)
	})

	t.Run("invalid params never reach api", func(t *testing.T) {
		t.Parallel()
		api := &MockAPI{}
		c, err := postmark.NewWithAPI(api, validConfig)
		require.NoError(t, err)

		err = c.SendEmail(context.Background(), email.SendEmailParams{SendTo: "owner@example.com"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
		api.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()
		api := &MockAPI{}
		boom := errors.New("connection reset")
		api.On("SendEmail", mock.Anything, mock.Anything).Return(pm.EmailResponse{}, boom).Once()

		c, err := postmark.NewWithAPI(api, validConfig)
		require.NoError(t, err)

		err = c.SendEmail(context.Background(), validParams)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("postmark error code", func(t *testing.T) {
		t.Parallel()
		api := &MockAPI{}
		api.On("SendEmail", mock.Anything, mock.Anything).
			Return(pm.EmailResponse{ErrorCode: 406, Message: "inactive recipient"}, nil).Once()

		c, err := postmark.NewWithAPI(api, validConfig)
		require.NoError(t, err)

		err = c.SendEmail(context.Background(), validParams)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.Contains(t, err.Error(), "inactive recipient")
	})
}
