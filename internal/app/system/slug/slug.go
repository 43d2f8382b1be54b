// Package slug turns titles into URL path segments for posts and news.
package slug

import (
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/oklog/ulid/v2"
)

// MaxLen caps the base slug before any suffix is added.
const MaxLen = 80

// Make lowercases title, strips diacritics and collapses every run of
// non-alphanumeric characters into a single dash. An empty result becomes
// "untitled".
func Make(title string) string {
	folded := text.Fold(title)
	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if len(s) > MaxLen {
		s = strings.TrimSuffix(s[:MaxLen], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// WithSuffix appends the random tail of a fresh ULID to base. Callers use
// it when base already belongs to another document.
func WithSuffix(base string) string {
	id := strings.ToLower(ulid.Make().String())
	return base + "-" + id[len(id)-8:]
}

// Attempts bounds how many suffixed slugs Claim tries after the base slug
// collides.
const Attempts = 3

// Claim calls write with base and, while write reports a duplicate key,
// with suffixed variants of base. It returns the slug that was written.
func Claim(base string, write func(s string) error) (string, error) {
	s := base
	for i := 0; ; i++ {
		err := write(s)
		if err == nil {
			return s, nil
		}
		if !wafflemongo.IsDup(err) || i >= Attempts {
			return "", err
		}
		s = WithSuffix(base)
	}
}
