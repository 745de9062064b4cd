package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(t time.Time, temp float64) ForecastSample {
	return ForecastSample{Time: t, Temperature: temp, Description: "clear sky", Icon: "01d"}
}

func TestDailySummaryPicksSampleClosestToNoon(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := ForecastSeries{
		City: "Pune",
		Samples: []ForecastSample{
			sampleAt(day.Add(9*time.Hour), 20),
			sampleAt(day.Add(12*time.Hour), 25),
			sampleAt(day.Add(15*time.Hour), 23),
			sampleAt(day.Add(33*time.Hour), 21), // next day 09:00
			sampleAt(day.Add(39*time.Hour), 22), // next day 15:00
		},
	}

	got, err := series.DailySummary(SummaryDays)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 25.0, got[0].Temperature)
	// 09:00 and 15:00 tie; the earlier one is kept
	assert.Equal(t, 21.0, got[1].Temperature)
}

func TestDailySummaryUsesSeriesZone(t *testing.T) {
	// 23:00 UTC is 04:30 the next day in +05:30
	zone := FixedZone(19800)
	base := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	series := ForecastSeries{
		Zone: zone,
		Samples: []ForecastSample{
			sampleAt(base, 18),
			sampleAt(base.Add(6*time.Hour), 26), // 10:30 local on May 2
		},
	}

	got, err := series.DailySummary(SummaryDays)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 26.0, got[0].Temperature)
}

func TestDailySummaryCapsDays(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var samples []ForecastSample
	for i := 0; i < 7; i++ {
		samples = append(samples, sampleAt(start.AddDate(0, 0, i), float64(i)))
	}

	got, err := ForecastSeries{Samples: samples}.DailySummary(SummaryDays)
	require.NoError(t, err)
	require.Len(t, got, SummaryDays)
	for i, s := range got {
		assert.Equal(t, float64(i), s.Temperature)
	}
}

func TestDailySummaryEmpty(t *testing.T) {
	_, err := ForecastSeries{City: "Nowhere"}.DailySummary(SummaryDays)
	assert.ErrorIs(t, err, ErrEmptyForecast)
}

func TestHourlyTakesLeadingSamples(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var samples []ForecastSample
	for i := 0; i < 40; i++ {
		samples = append(samples, sampleAt(start.Add(time.Duration(i)*3*time.Hour), float64(i)))
	}
	series := ForecastSeries{Samples: samples}

	got := series.Hourly(HourlySamples)
	require.Len(t, got, HourlySamples)
	assert.Equal(t, 0.0, got[0].Temperature)
	assert.Equal(t, 11.0, got[11].Temperature)

	got[0].Temperature = 99
	assert.Equal(t, 0.0, series.Samples[0].Temperature, "Hourly must return a copy")

	short := ForecastSeries{Samples: samples[:3]}
	assert.Len(t, short.Hourly(HourlySamples), 3)
}
