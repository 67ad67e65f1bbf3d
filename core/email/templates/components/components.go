package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps children in a minimal table-based HTML document that renders in most email clients.
func Layout(title string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"><title>`+
			templ.EscapeString(title)+
			`</title></head><body style="margin:0;padding:0;background:#f4f4f5;font-family:Arial,sans-serif;">`+
			`<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px;">`+
			`<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;padding:32px;">`); err != nil {
			return err
		}
		for _, c := range children {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</table></td></tr></table></body></html>`)
		return err
	})
}

// Header renders a title with an optional subtitle.
func Header(title, subtitle string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		html := `<tr><td><h1 style="margin:0 0 8px;font-size:22px;color:#18181b;">` + templ.EscapeString(title) + `</h1>`
		if subtitle != "" {
			html += `<p style="margin:0 0 16px;color:#71717a;">` + templ.EscapeString(subtitle) + `</p>`
		}
		_, err := io.WriteString(w, html+`</td></tr>`)
		return err
	})
}

// Text renders a paragraph.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<tr><td><p style="margin:0 0 16px;color:#3f3f46;line-height:1.5;">`+templ.EscapeString(s)+`</p></td></tr>`)
		return err
	})
}

// PrimaryButton renders a call-to-action link styled as a button.
func PrimaryButton(label, href string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<tr><td style="padding:8px 0 24px;"><a href="`+templ.EscapeString(href)+
			`" style="display:inline-block;padding:12px 24px;background:#2563eb;color:#ffffff;text-decoration:none;border-radius:6px;">`+
			templ.EscapeString(label)+`</a></td></tr>`)
		return err
	})
}

// Footer renders small print below the content.
func Footer(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<tr><td style="border-top:1px solid #e4e4e7;padding-top:16px;"><p style="margin:0;font-size:12px;color:#a1a1aa;">`+
			templ.EscapeString(s)+`</p></td></tr>`)
		return err
	})
}
