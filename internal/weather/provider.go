package weather

import (
	"context"
	"iter"
)

// Provider abstracts the weather data source (OpenWeatherMap or the keyless fallback).
// Implementations normalize provider payloads; nothing downstream sees provider field names.
type Provider interface {
	Name() string
	// Suggest returns at most a handful of place candidates for partial text.
	Suggest(ctx context.Context, text string) (iter.Seq[Suggestion], error)
	FetchCurrent(ctx context.Context, q Query) (WeatherSnapshot, error)
	FetchForecast(ctx context.Context, city string) (ForecastSeries, error)
	FetchAirQuality(ctx context.Context, c Coordinates) (AirQualityReading, error)
}
