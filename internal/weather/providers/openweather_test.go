package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const currentPune = `{
  "coord": {"lon": 73.8553, "lat": 18.5196},
  "weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
  "main": {"temp": 24.6, "feels_like": 25.1, "humidity": 88, "pressure": 1006},
  "visibility": 6000,
  "wind": {"speed": 5.1, "deg": 250},
  "dt": 1719900000,
  "sys": {"country": "IN", "sunrise": 1719880000, "sunset": 1719927000},
  "timezone": 19800,
  "name": "Pune"
}`

const forecastPune = `{
  "city": {"name": "Pune", "country": "IN", "timezone": 19800},
  "list": [
    {"dt": 1719900000, "main": {"temp": 24}, "weather": [{"main": "Clouds", "description": "overcast clouds", "icon": "04d"}]},
    {"dt": 1719910800, "main": {"temp": 26}, "weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}]}
  ]
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc, key string) *OpenWeatherProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeatherProvider(srv.Client(), OpenWeatherOptions{
		APIKey:  key,
		DataURL: srv.URL + "/data/2.5",
		GeoURL:  srv.URL + "/geo/1.0",
	})
}

func TestFetchCurrent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Pune", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		w.Write([]byte(currentPune))
	}, "k")

	snap, err := p.FetchCurrent(context.Background(), weather.ByCity("Pune"))
	require.NoError(t, err)
	assert.Equal(t, "Pune", snap.Place)
	assert.Equal(t, "IN", snap.Country)
	assert.Equal(t, weather.ConditionRain, snap.Condition)
	assert.Equal(t, "light rain", snap.Description)
	assert.Equal(t, 24.6, snap.Temperature)
	assert.Equal(t, 6000.0, snap.Visibility)
	require.NotNil(t, snap.Coordinates)
	assert.InDelta(t, 18.5196, snap.Coordinates.Lat, 1e-9)

	_, offset := snap.Timestamp.In(snap.Zone).Zone()
	assert.Equal(t, 19800, offset)
}

func TestFetchCurrentByCoordinates(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("q"))
		assert.Equal(t, "18.52", r.URL.Query().Get("lat"))
		assert.Equal(t, "73.86", r.URL.Query().Get("lon"))
		w.Write([]byte(currentPune))
	}, "k")

	_, err := p.FetchCurrent(context.Background(), weather.ByCoordinates(weather.Coordinates{Lat: 18.52, Lon: 73.86}))
	require.NoError(t, err)
}

func TestFetchCurrentNotFound(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}, "k")

	_, err := p.FetchCurrent(context.Background(), weather.ByCity("Atlantis"))
	var pe *weather.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusNotFound, pe.Status)
	assert.Equal(t, "city not found", pe.Message)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(currentPune))
	}))
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), OpenWeatherOptions{
		APIKey:     "k",
		DataURL:    srv.URL,
		MaxRetries: 1,
	})

	snap, err := p.FetchCurrent(context.Background(), weather.ByCity("Pune"))
	require.NoError(t, err)
	assert.Equal(t, "Pune", snap.Place)
	assert.Equal(t, int32(2), calls.Load())
}

func TestServerErrorAfterRetries(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "k")

	_, err := p.FetchForecast(context.Background(), "Pune")
	var pe *weather.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusBadGateway, pe.Status)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOpenWeatherProvider(&http.Client{Timeout: time.Second}, OpenWeatherOptions{APIKey: "k", DataURL: url})
	_, err := p.FetchCurrent(context.Background(), weather.ByCity("Pune"))
	var te *weather.TransportError
	require.ErrorAs(t, err, &te)
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":`))
	}, "k")

	_, err := p.FetchCurrent(context.Background(), weather.ByCity("Pune"))
	var te *weather.TransportError
	require.ErrorAs(t, err, &te)
}

func TestFetchForecast(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		w.Write([]byte(forecastPune))
	}, "k")

	series, err := p.FetchForecast(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune, IN", series.City)
	require.Len(t, series.Samples, 2)
	assert.Equal(t, weather.ConditionClouds, series.Samples[0].Condition)
	assert.Equal(t, 26.0, series.Samples[1].Temperature)
	assert.Equal(t, time.Unix(1719910800, 0).UTC(), series.Samples[1].Time)
}

func TestFetchAirQuality(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/air_pollution", r.URL.Path)
		w.Write([]byte(`{"list":[{"main":{"aqi":3}}]}`))
	}, "k")

	aq, err := p.FetchAirQuality(context.Background(), weather.Coordinates{Lat: 1, Lon: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, aq.Index)
	assert.Equal(t, "Moderate", aq.Label())
}

func TestFetchAirQualityWithoutKey(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}, "")

	_, err := p.FetchAirQuality(context.Background(), weather.Coordinates{Lat: 1, Lon: 2})
	assert.ErrorIs(t, err, weather.ErrAirQualityUnavailable)
	assert.ErrorIs(t, err, weather.ErrNoCredential)
}

func TestFetchAirQualityFailureIsUnavailable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}, "k")

	_, err := p.FetchAirQuality(context.Background(), weather.Coordinates{Lat: 1, Lon: 2})
	assert.ErrorIs(t, err, weather.ErrAirQualityUnavailable)
	var pe *weather.ProviderError
	assert.True(t, errors.As(err, &pe))
}

func TestSuggestGeocoding(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		assert.Equal(t, "6", r.URL.Query().Get("limit"))
		w.Write([]byte(`[
		  {"name":"London","country":"GB","state":"England","lat":51.5,"lon":-0.12},
		  {"name":"London","country":"CA","state":"Ontario","lat":42.98,"lon":-81.24}
		]`))
	}, "k")

	seq, err := p.Suggest(context.Background(), "Lon")
	require.NoError(t, err)
	got := slices.Collect(seq)
	require.Len(t, got, 2)
	assert.Equal(t, "London, England, GB", got[0].Label)
	assert.Equal(t, "Ontario", got[1].State)
}

func TestSuggestWithoutKeyUsesFallback(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}, "")

	seq, err := p.Suggest(context.Background(), "Lon")
	require.NoError(t, err)
	got := slices.Collect(seq)
	require.Len(t, got, 1)
	assert.Equal(t, "London, UK", got[0].Label)
	assert.Equal(t, "London", got[0].Name)
	assert.Equal(t, "UK", got[0].Country)
}
