package email

import "errors"

var (
	// ErrFailedToSendEmail wraps every delivery failure of a sender.
	ErrFailedToSendEmail = errors.New("failed to send email")

	// ErrInvalidConfig is returned when a sender cannot be built from its configuration.
	ErrInvalidConfig = errors.New("invalid email configuration")

	// ErrInvalidParams is returned when SendEmailParams fail validation.
	ErrInvalidParams = errors.New("invalid email parameters")

	// ErrInvalidRecipient is joined with ErrInvalidParams when SendTo is not an email address.
	ErrInvalidRecipient = errors.New("recipient is not a valid email address")

	// ErrOutboxUnavailable is joined with ErrFailedToSendEmail when the dev sender
	// cannot create or write its output directory.
	ErrOutboxUnavailable = errors.New("dev email directory is not writable")
)
