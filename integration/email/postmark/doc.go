// Package postmark implements email.EmailSender on top of the Postmark
// transactional API.
//
//	sender, err := postmark.New(postmark.Config{
//		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//		SenderEmail:          "noreply@example.com",
//		SupportEmail:         "support@example.com",
//	})
//
// API failures and non-zero Postmark error codes are returned joined with
// email.ErrFailedToSendEmail.
package postmark
