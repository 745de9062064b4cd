package weather

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxSuggestions bounds every suggestion list.
	MaxSuggestions = 6
	// MinSuggestQuery is the shortest text that produces suggestions.
	MinSuggestQuery = 2
)

// Bundle is everything one panel refresh needs from the provider.
// AirQuality is nil when it could not be fetched.
type Bundle struct {
	Current    WeatherSnapshot
	Forecast   ForecastSeries
	AirQuality *AirQualityReading
}

// Service orchestrates the provider calls behind one refresh.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger.Named("weather").With(zap.String("provider", provider.Name())),
	}
}

// Collect fetches current weather and forecast for a city concurrently, then
// air quality for the coordinates the current-weather response resolved to.
// Air-quality failures are absorbed; the first current/forecast failure is returned.
func (s *Service) Collect(ctx context.Context, city string) (Bundle, error) {
	var b Bundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := s.provider.FetchCurrent(gctx, ByCity(city))
		if err != nil {
			return err
		}
		b.Current = cur
		return nil
	})
	g.Go(func() error {
		fc, err := s.provider.FetchForecast(gctx, city)
		if err != nil {
			return err
		}
		b.Forecast = fc
		return nil
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}

	b.AirQuality = s.airQuality(ctx, b.Current.Coordinates)
	return b, nil
}

func (s *Service) airQuality(ctx context.Context, coords *Coordinates) *AirQualityReading {
	if coords == nil {
		return nil
	}
	aq, err := s.provider.FetchAirQuality(ctx, *coords)
	if err != nil {
		if !errors.Is(err, ErrAirQualityUnavailable) {
			s.logger.Debug("air quality fetch failed", zap.Stringer("coords", coords), zap.Error(err))
		}
		return nil
	}
	return &aq
}

// Suggest returns up to MaxSuggestions candidates for text. Texts shorter than
// MinSuggestQuery produce no suggestions and no provider call.
func (s *Service) Suggest(ctx context.Context, text string) ([]Suggestion, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinSuggestQuery {
		return nil, nil
	}
	seq, err := s.provider.Suggest(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", text, err)
	}
	return Take(seq, MaxSuggestions), nil
}

// Take drains at most n values from seq.
func Take[T any](seq iter.Seq[T], n int) []T {
	out := make([]T, 0, n)
	if n <= 0 {
		return out
	}
	for v := range seq {
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}
