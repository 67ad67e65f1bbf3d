package templates

import (
	"bytes"
	"context"
	"errors"

	"github.com/a-h/templ"
)

// ErrRenderFailed is returned when a component fails to render.
var ErrRenderFailed = errors.New("failed to render email template")

// Render renders a templ component to an HTML string for use as an email body.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
