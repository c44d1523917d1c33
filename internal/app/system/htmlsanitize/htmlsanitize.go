// Package htmlsanitize cleans user-submitted text before it is stored and
// prepares it for display.
//
// Complaint fields are plain text. StripTags removes any markup a client
// sends so stored values never carry HTML; templates escape them again on
// output. PrepareForDisplay turns multi-line text into safe paragraphs.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// StripTags removes every HTML element (and the contents of script and
// style elements) from s and trims surrounding whitespace. Entities are
// decoded, so "5 < 10" survives unchanged.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}

// IsPlainText reports whether s contains no HTML-looking tags.
func IsPlainText(s string) bool {
	open := strings.Index(s, "<")
	if open < 0 {
		return true
	}
	return !strings.Contains(s[open:], ">")
}

// PlainTextToHTML escapes s and converts newlines to <br>, wrapped in a
// single paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}

// PrepareForDisplay renders stored plain text as safe HTML. Any markup that
// slipped into storage is stripped first.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if !IsPlainText(s) {
		s = StripTags(s)
	}
	return template.HTML(PlainTextToHTML(s))
}
