package locate

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ReverseGeocoder names the locality at a coordinate pair.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c weather.Coordinates) (string, error)
}

// Resolver turns coordinates into a city name: first from the weather
// provider's current-weather response, then from the reverse geocoder, and
// finally from the coordinates themselves.
type Resolver struct {
	provider weather.Provider
	reverse  ReverseGeocoder
	logger   *zap.Logger
}

// NewResolver creates a Resolver. reverse may be nil.
func NewResolver(provider weather.Provider, reverse ReverseGeocoder, logger *zap.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		reverse:  reverse,
		logger:   logger.Named("locate"),
	}
}

// PlaceName resolves c. A provider failure is returned; an empty provider
// name falls back to the reverse geocoder and then to CoordinateLabel.
func (r *Resolver) PlaceName(ctx context.Context, c weather.Coordinates) (string, error) {
	snap, err := r.provider.FetchCurrent(ctx, weather.ByCoordinates(c))
	if err != nil {
		return "", err
	}
	if name := strings.TrimSpace(snap.Place); name != "" {
		return name, nil
	}

	if r.reverse != nil {
		name, err := r.reverse.Reverse(ctx, c)
		if err == nil && strings.TrimSpace(name) != "" {
			return name, nil
		}
		r.logger.Debug("reverse geocoding gave no name", zap.Stringer("coords", c), zap.Error(err))
	}
	return CoordinateLabel(c), nil
}

// CoordinateLabel is the display label for an unnamed position.
func CoordinateLabel(c weather.Coordinates) string {
	return fmt.Sprintf("Lat %.2f, Lon %.2f", c.Lat, c.Lon)
}

// GoogleGeocoder reverse-geocodes through the Google Geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoder package with apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Reverse returns the city of the first address found at c.
func (g *GoogleGeocoder) Reverse(ctx context.Context, c weather.Coordinates) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  c.Lat,
		Longitude: c.Lon,
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode %s: %w", c, err)
	}
	for _, a := range addresses {
		if a.City != "" {
			return weather.JoinPlace(a.City, a.Country), nil
		}
	}
	return "", nil
}
