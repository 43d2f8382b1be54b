// Package htmlsanitize cleans user-authored rich text (post, news, question
// and answer bodies) before it is stored.
package htmlsanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("u", "s", "sub", "sup", "mark")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tfoot", "tr", "td", "th", "pre", "code")
	p.AllowAttrs("style").OnElements("table", "tr", "td", "th")
	p.AllowStyles("width", "text-align", "vertical-align").OnElements("table", "tr", "td", "th")

	return p
}

// Sanitize strips scripts, event handlers, unsafe URLs and any element
// outside the allow list. Empty input yields empty output.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

var tagPattern = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !tagPattern.MatchString(s)
}

// PlainTextToHTML escapes s and wraps it in a paragraph, turning newlines
// into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// Body normalizes a submitted body: plain text is escaped into a paragraph,
// HTML is sanitized.
func Body(s string) string {
	s = strings.TrimSpace(s)
	if IsPlainText(s) {
		return PlainTextToHTML(s)
	}
	return Sanitize(s)
}
