package providers

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	defaultDataURL = "https://api.openweathermap.org/data/2.5"
	defaultGeoURL  = "https://api.openweathermap.org/geo/1.0"
)

// OpenWeatherOptions configures an OpenWeatherProvider.
type OpenWeatherOptions struct {
	APIKey     string
	DataURL    string // defaults to the public data/2.5 endpoint
	GeoURL     string // defaults to the public geo/1.0 endpoint
	MaxRetries int
	RateLimit  float64 // requests per second, 0 disables limiting
	RateBurst  int
	Logger     *zap.Logger
}

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
// Without an API key suggestions come from a curated list and air quality is unavailable.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	dataURL  string
	geoURL   string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	fallback *FallbackSuggester
	logger   *zap.Logger
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)

func NewOpenWeatherProvider(client *http.Client, opts OpenWeatherOptions) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if opts.DataURL == "" {
		opts.DataURL = defaultDataURL
	}
	if opts.GeoURL == "" {
		opts.GeoURL = defaultGeoURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  opts.APIKey,
		dataURL: opts.DataURL,
		geoURL:  opts.GeoURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      opts.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
			Limiter: limiter,
		},
		circuit:  cb,
		fallback: NewFallbackSuggester(nil),
		logger:   opts.Logger.Named("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// HasCredential reports whether an API key is configured.
func (p *OpenWeatherProvider) HasCredential() bool {
	return p.apiKey != ""
}

// Suggest queries the direct geocoding endpoint, or the curated list when no key is set.
func (p *OpenWeatherProvider) Suggest(ctx context.Context, text string) (iter.Seq[weather.Suggestion], error) {
	if !p.HasCredential() {
		return p.fallback.Suggest(ctx, text)
	}

	const op = "geocode"
	values := url.Values{}
	values.Set("q", text)
	values.Set("limit", strconv.Itoa(weather.MaxSuggestions))

	var payload []struct {
		Name    string  `json:"name"`
		State   string  `json:"state"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := p.get(ctx, op, p.geoURL+"/direct", values, &payload); err != nil {
		return nil, err
	}

	return func(yield func(weather.Suggestion) bool) {
		for _, d := range payload {
			s := weather.Suggestion{
				Label:       weather.JoinPlace(d.Name, d.State, d.Country),
				Name:        d.Name,
				State:       d.State,
				Country:     d.Country,
				Coordinates: &weather.Coordinates{Lat: d.Lat, Lon: d.Lon},
			}
			if !yield(s) {
				return
			}
		}
	}, nil
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func firstCondition(items []owmCondition) owmCondition {
	if len(items) == 0 {
		return owmCondition{}
	}
	return items[0]
}

// FetchCurrent fetches current conditions by city name or coordinates.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, q weather.Query) (weather.WeatherSnapshot, error) {
	const op = "current weather"
	values := url.Values{}
	values.Set("units", "metric")
	if q.Coordinates != nil {
		values.Set("lat", strconv.FormatFloat(q.Coordinates.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(q.Coordinates.Lon, 'f', -1, 64))
	} else {
		values.Set("q", q.City)
	}

	var payload struct {
		Dt    int64 `json:"dt"`
		Coord *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Weather []owmCondition `json:"weather"`
		Main    struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Visibility float64 `json:"visibility"`
		Wind       struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Sys struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
		Timezone int    `json:"timezone"`
		Name     string `json:"name"`
	}
	if err := p.get(ctx, op, p.dataURL+"/weather", values, &payload); err != nil {
		return weather.WeatherSnapshot{}, err
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	cond := firstCondition(payload.Weather)
	snap := weather.WeatherSnapshot{
		Place:       payload.Name,
		Country:     payload.Sys.Country,
		Timestamp:   ts,
		Zone:        weather.FixedZone(payload.Timezone),
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		Visibility:  payload.Visibility,
		WindSpeed:   payload.Wind.Speed,
		WindDeg:     payload.Wind.Deg,
		Condition:   weather.Classify(cond.Main),
		Summary:     cond.Main,
		Description: cond.Description,
		Icon:        cond.Icon,
		Sunrise:     unixOrZero(payload.Sys.Sunrise),
		Sunset:      unixOrZero(payload.Sys.Sunset),
	}
	if payload.Coord != nil {
		snap.Coordinates = &weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon}
	}
	return snap, nil
}

// FetchForecast fetches the 3-hour step forecast for a city.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, city string) (weather.ForecastSeries, error) {
	const op = "forecast"
	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")

	var payload struct {
		City struct {
			Name     string `json:"name"`
			Country  string `json:"country"`
			Timezone int    `json:"timezone"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
	}
	if err := p.get(ctx, op, p.dataURL+"/forecast", values, &payload); err != nil {
		return weather.ForecastSeries{}, err
	}

	series := weather.ForecastSeries{
		City:    weather.JoinPlace(payload.City.Name, payload.City.Country),
		Zone:    weather.FixedZone(payload.City.Timezone),
		Samples: make([]weather.ForecastSample, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		cond := firstCondition(item.Weather)
		series.Samples = append(series.Samples, weather.ForecastSample{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Condition:   weather.Classify(cond.Main),
			Description: cond.Description,
			Icon:        cond.Icon,
		})
	}
	return series, nil
}

// FetchAirQuality fetches the air pollution index for coordinates.
func (p *OpenWeatherProvider) FetchAirQuality(ctx context.Context, c weather.Coordinates) (weather.AirQualityReading, error) {
	if !p.HasCredential() {
		return weather.AirQualityReading{}, fmt.Errorf("%w: %w", weather.ErrAirQualityUnavailable, weather.ErrNoCredential)
	}

	const op = "air quality"
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}
	if err := p.get(ctx, op, p.dataURL+"/air_pollution", values, &payload); err != nil {
		return weather.AirQualityReading{}, fmt.Errorf("%w: %w", weather.ErrAirQualityUnavailable, err)
	}
	if len(payload.List) == 0 || payload.List[0].Main.AQI < 1 || payload.List[0].Main.AQI > 5 {
		return weather.AirQualityReading{}, fmt.Errorf("%w: no index in response", weather.ErrAirQualityUnavailable)
	}

	return weather.AirQualityReading{Index: payload.List[0].Main.AQI, Coordinates: c}, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, op, endpoint string, values url.Values, v any) error {
	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, vs := range values {
			q[k] = vs
		}
		q.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", endpoint, q.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, op, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		p.logger.Warn("provider request failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return decodeJSON(op, resp, v)
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
