// Package normalize canonicalises user-entered strings before they are
// stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display value and collapses internal runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username trims a username. Case is preserved for display; lookups use
// the folded form.
func Username(s string) string {
	return strings.TrimSpace(s)
}
