package weather

import (
	"errors"
	"time"
)

const (
	// SummaryDays caps the multi-day summary.
	SummaryDays = 5
	// HourlySamples is the length of the hourly trend.
	HourlySamples = 12
)

// ErrEmptyForecast is returned when a series carries no samples.
var ErrEmptyForecast = errors.New("forecast contains no samples")

// DailySummary picks one representative sample per calendar day: the one
// whose hour of day is closest to noon, keeping the earlier sample on a tie.
// Days are taken from the samples' own times in the series zone, in order of
// first appearance, and capped at days.
func (s ForecastSeries) DailySummary(days int) ([]ForecastSample, error) {
	if len(s.Samples) == 0 {
		return nil, ErrEmptyForecast
	}
	loc := s.location()

	type dayKey string

	var (
		order []dayKey
		best  = make(map[dayKey]ForecastSample)
	)

	for _, sample := range s.Samples {
		local := sample.Time.In(loc)
		k := dayKey(local.Format("2006-01-02"))

		current, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = sample
			continue
		}
		if noonDistance(local) < noonDistance(current.Time.In(loc)) {
			best[k] = sample
		}
	}

	if days > 0 && len(order) > days {
		order = order[:days]
	}

	out := make([]ForecastSample, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out, nil
}

// Hourly returns the leading n samples of the series.
func (s ForecastSeries) Hourly(n int) []ForecastSample {
	if n > len(s.Samples) {
		n = len(s.Samples)
	}
	out := make([]ForecastSample, n)
	copy(out, s.Samples[:n])
	return out
}

func (s ForecastSeries) location() *time.Location {
	if s.Zone == nil {
		return time.UTC
	}
	return s.Zone
}

// noonDistance is the absolute distance from 12:00 in minutes.
func noonDistance(t time.Time) int {
	d := t.Hour()*60 + t.Minute() - 12*60
	if d < 0 {
		return -d
	}
	return d
}
