package verification

import "errors"

var (
	// ErrTokenNotFound is returned when a token is unknown, already used, or expired.
	ErrTokenNotFound = errors.New("verification token not found")

	// ErrTransport is returned when the verification email could not be sent.
	// It is joined with the sender error.
	ErrTransport = errors.New("failed to deliver verification email")

	ErrSenderNil       = errors.New("email sender is nil")
	ErrInvalidIdentity = errors.New("invalid identity address")
)
