package weather

import (
	"fmt"
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionDefault      Condition = "default"
	ConditionClear        Condition = "clear"
	ConditionClouds       Condition = "clouds"
	ConditionRain         Condition = "rain"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionSnow         Condition = "snow"
	ConditionMist         Condition = "mist"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Query addresses a current-weather lookup either by city name or by coordinates.
// Exactly one of City or Coordinates is set.
type Query struct {
	City        string
	Coordinates *Coordinates
}

// ByCity builds a name-based query.
func ByCity(city string) Query {
	return Query{City: city}
}

// ByCoordinates builds a coordinate-based query.
func ByCoordinates(c Coordinates) Query {
	return Query{Coordinates: &c}
}

func (q Query) String() string {
	if q.Coordinates != nil {
		return q.Coordinates.String()
	}
	return q.City
}

// Suggestion is one place candidate returned while the user types.
type Suggestion struct {
	Label       string       `json:"label"`
	Name        string       `json:"name"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// JoinPlace joins the non-empty parts of a place with ", ", skipping a part
// equal to the one before it.
func JoinPlace(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(out) > 0 && strings.EqualFold(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// WeatherSnapshot is the normalized current-conditions record for a place.
// Snapshots are replaced on every fetch and never mutated.
type WeatherSnapshot struct {
	Place       string         `json:"place"`
	Country     string         `json:"country,omitempty"`
	Coordinates *Coordinates   `json:"coordinates,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Zone        *time.Location `json:"-"`

	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Humidity    float64   `json:"humidityPercent"`
	Pressure    float64   `json:"pressureHpa"`
	Visibility  float64   `json:"visibilityM"`
	WindSpeed   float64   `json:"windSpeedMs"`
	WindDeg     float64   `json:"windDeg"`
	Condition   Condition `json:"condition"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
}

// ForecastSample is one point of a forecast series.
type ForecastSample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperatureC"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
}

// ForecastSeries is an ordered, fixed-cadence sequence of forecast samples.
// Zone is the place's offset from UTC; nil means UTC.
type ForecastSeries struct {
	City    string           `json:"city"`
	Zone    *time.Location   `json:"-"`
	Samples []ForecastSample `json:"samples"`
}

// AirQualityReading is an ordinal air-quality index (1 best, 5 worst).
type AirQualityReading struct {
	Index       int         `json:"index"`
	Coordinates Coordinates `json:"coordinates"`
}

// AirQualityLabels maps index values to their provider wording.
var AirQualityLabels = map[int]string{
	1: "Good",
	2: "Fair",
	3: "Moderate",
	4: "Poor",
	5: "Very Poor",
}

// Label returns the wording for the reading's index.
func (a AirQualityReading) Label() string {
	if l, ok := AirQualityLabels[a.Index]; ok {
		return l
	}
	return "Unknown"
}

// FixedZone converts a provider UTC offset in seconds into a location.
func FixedZone(offsetSeconds int) *time.Location {
	if offsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetSeconds)
}
