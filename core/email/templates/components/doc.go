// Package components provides reusable building blocks for HTML emails.
// Every component is a templ.Component and can be nested inside Layout.
package components
