package dashboard

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// ErrInvalidCity is returned for names that normalize to an empty slug.
var ErrInvalidCity = errors.New("invalid city name")

// TrackedCity is one city on the dashboard. Slug is the identity; Name is cosmetic.
type TrackedCity struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Order int    `json:"order"`
}

// NormalizeName trims, collapses whitespace and title-cases each word:
// "  new   YORK " becomes "New York".
func NormalizeName(name string) string {
	words := strings.Fields(common.CollapseSpaces(name))
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	first, size := utf8.DecodeRuneInString(w)
	if first == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
}

// Slugify lowercases s, replaces every run of characters outside [a-z0-9]
// with "-" and trims leading and trailing dashes: "London, Uk" becomes "london-uk".
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// NewTrackedCity normalizes a user-supplied name into a TrackedCity.
func NewTrackedCity(name string, order int) (TrackedCity, error) {
	display := NormalizeName(name)
	slug := Slugify(display)
	if slug == "" {
		return TrackedCity{}, ErrInvalidCity
	}
	return TrackedCity{Name: display, Slug: slug, Order: order}, nil
}
