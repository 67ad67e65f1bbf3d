// Package email defines the transactional email contract used by the service.
//
// Providers implement EmailSender; see integration/email/smtp and
// integration/email/postmark. DevSender writes emails to disk for local runs.
//
//	sender := email.NewDevSender("./dev_emails")
//	err := sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Confirm your address",
//		BodyHTML: body,
//		Tag:      "verification",
//	})
//
// Send failures are reported as ErrFailedToSendEmail joined with the provider error;
// invalid parameters as ErrInvalidParams.
package email
