package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	GeocoderAPIKey    string

	HTTPTimeout        time.Duration `validate:"gt=0"`
	ProviderMaxRetries int           `validate:"gte=0,lte=10"`
	ProviderRateLimit  float64       `validate:"gt=0"`
	ProviderRateBurst  int           `validate:"gte=1"`

	// RefreshInterval controls how often every panel is re-fetched (0 disables).
	RefreshInterval time.Duration `validate:"gte=0"`

	ClockTimezone string `validate:"required"`

	// Cities tracked when the store is empty.
	DefaultCities []string `validate:"dive,required"`

	StorePath string `validate:"required"`

	Port       string `validate:"required,numeric"`
	EventsAddr string `validate:"required"`
	LogLevel   string `validate:"required,oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &AppConfig{
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		GeocoderAPIKey:     os.Getenv("GOOGLE_GEOCODER_API_KEY"),
		ProviderMaxRetries: getenvInt("PROVIDER_MAX_RETRIES", 2),
		ProviderRateLimit:  getenvFloat("PROVIDER_RATE_LIMIT", 1),
		ProviderRateBurst:  getenvInt("PROVIDER_RATE_BURST", 5),
		ClockTimezone:      getenvDefault("CLOCK_TIMEZONE", "Asia/Kolkata"),
		DefaultCities:      splitList(getenvDefault("DEFAULT_CITIES", "Pune,Mumbai,New York")),
		StorePath:          getenvDefault("STORE_PATH", "data/dashboard.db"),
		Port:               getenvDefault("PORT", "8080"),
		EventsAddr:         getenvDefault("EVENTS_ADDR", ":8081"),
		LogLevel:           strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getenvDuration accepts Go durations; a bare "0" is allowed too.
func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
