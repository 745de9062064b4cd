package dashboard

import (
	"context"
	"fmt"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// PositionSource yields the user's current coordinates.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (weather.Coordinates, error)
}

// PlaceResolver names the place at a coordinate pair.
type PlaceResolver interface {
	PlaceName(ctx context.Context, c weather.Coordinates) (string, error)
}

// AddFromPosition tracks the city at the user's current position, persisting
// and focusing it. A geolocation failure creates no panel and is returned as is.
func (r *Registry) AddFromPosition(ctx context.Context, src PositionSource, places PlaceResolver) (PanelInfo, error) {
	coords, err := src.CurrentPosition(ctx)
	if err != nil {
		return PanelInfo{}, err
	}

	name, err := places.PlaceName(ctx, coords)
	if err != nil {
		return PanelInfo{}, fmt.Errorf("resolve place at %s: %w", coords, err)
	}
	return r.AddCity(name, true)
}
