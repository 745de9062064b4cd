package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  new   YORK ": "New York",
		"london, uk":    "London, Uk",
		"PUNE":          "Pune",
		"são paulo":     "São Paulo",
		"":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "NormalizeName(%q)", in)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"London, Uk":   "london-uk",
		"New York":     "new-york",
		"  --Pune--  ": "pune",
		"St. John's":   "st-john-s",
		"Zürich":       "z-rich",
		"!!!":          "",
		"District 9":   "district-9",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestNewTrackedCity(t *testing.T) {
	c, err := NewTrackedCity("new   york", 3)
	require.NoError(t, err)
	assert.Equal(t, TrackedCity{Name: "New York", Slug: "new-york", Order: 3}, c)

	_, err = NewTrackedCity("   ", 0)
	assert.ErrorIs(t, err, ErrInvalidCity)

	_, err = NewTrackedCity("!?", 0)
	assert.ErrorIs(t, err, ErrInvalidCity)
}
