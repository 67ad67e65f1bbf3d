// Package templates renders email bodies from templ components.
//
//	body, err := templates.Render(ctx, templates.Verification(link))
//
// Components live in the components subpackage and escape all text they are given.
package templates
