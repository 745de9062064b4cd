package providers

import (
	"context"
	"iter"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultFallbackPlaces is the curated list used for suggestions when no
// provider key is configured.
var DefaultFallbackPlaces = []string{
	"Pune, India",
	"Mumbai, India",
	"Delhi, India",
	"London, UK",
	"Paris, France",
	"New York, US",
}

// FallbackSuggester filters a static list by case-insensitive substring.
type FallbackSuggester struct {
	places []weather.Suggestion
}

// NewFallbackSuggester builds a suggester over "Name, Country" entries.
// A nil list selects DefaultFallbackPlaces.
func NewFallbackSuggester(entries []string) *FallbackSuggester {
	if entries == nil {
		entries = DefaultFallbackPlaces
	}
	places := make([]weather.Suggestion, 0, len(entries))
	for _, e := range entries {
		name, country, _ := strings.Cut(e, ",")
		places = append(places, weather.Suggestion{
			Label:   strings.TrimSpace(e),
			Name:    strings.TrimSpace(name),
			Country: strings.TrimSpace(country),
		})
	}
	return &FallbackSuggester{places: places}
}

// Suggest yields every entry whose label contains text, in list order.
func (f *FallbackSuggester) Suggest(_ context.Context, text string) (iter.Seq[weather.Suggestion], error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	return func(yield func(weather.Suggestion) bool) {
		for _, s := range f.places {
			if !strings.Contains(strings.ToLower(s.Label), needle) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}, nil
}
