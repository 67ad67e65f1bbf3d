package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// EmailSender sends a single transactional email. Implementations must be safe for concurrent use.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams defines the email content and metadata.
type SendEmailParams struct {
	SendTo   string // Recipient email address (required)
	Subject  string // Email subject line (required)
	BodyHTML string // HTML email body (required)
	Tag      string // Optional tag for analytics and tracking
}

// Validate checks that all required fields are present and the recipient looks like an address.
func (p SendEmailParams) Validate() error {
	var missing []string
	if strings.TrimSpace(p.SendTo) == "" {
		missing = append(missing, "SendTo")
	}
	if strings.TrimSpace(p.Subject) == "" {
		missing = append(missing, "Subject")
	}
	if strings.TrimSpace(p.BodyHTML) == "" {
		missing = append(missing, "BodyHTML")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidParams, strings.Join(missing, ", "))
	}
	if !IsValidAddress(p.SendTo) {
		return errors.Join(ErrInvalidParams, fmt.Errorf("%w: %q", ErrInvalidRecipient, p.SendTo))
	}
	return nil
}

// addressRegex is a simple regex for validating email addresses.
var addressRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidAddress checks if the provided string is a valid email address.
func IsValidAddress(address string) bool {
	return addressRegex.MatchString(address)
}
