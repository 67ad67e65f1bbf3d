package templates

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/autowhitelist/core/email/templates/components"
)

// Verification is the email asking the owner of an address to confirm it.
func Verification(link string) templ.Component {
	return components.Layout("Confirm your email address",
		components.Header("Confirm your email address", "One click and you're done."),
		components.Text("Follow the link below to finish verification. It works once and expires in one hour."),
		components.PrimaryButton("Verify email", link),
		components.Text("If the button does not work, paste this address into your browser: "+link),
		components.Footer("If you did not request this, you can ignore this email."),
	)
}
