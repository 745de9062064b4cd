package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/weather-dashboard/internal/chart"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const iconURL = "https://openweathermap.org/img/wn/%s%s.png"

// View is the rendered content of a panel. Sections are nil until rendered.
type View struct {
	Current    *CurrentView    `json:"current,omitempty"`
	Forecast   []DayCard       `json:"forecast,omitempty"`
	Hourly     *HourlyView     `json:"hourly,omitempty"`
	Extra      *ExtraView      `json:"extra,omitempty"`
	AirQuality *AirQualityView `json:"airQuality,omitempty"`
	Theme      *Theme          `json:"theme,omitempty"`
}

type CurrentView struct {
	Place       string `json:"place"`
	Temperature int    `json:"temperatureC"`
	FeelsLike   int    `json:"feelsLikeC"`
	Humidity    int    `json:"humidityPercent"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl,omitempty"`
}

type DayCard struct {
	Date        string `json:"date"`
	Label       string `json:"label"`
	Temperature int    `json:"temperatureC"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl,omitempty"`
}

// HourlyView is the hourly trend; Chart is the text rendering of the panel's
// current chart instance.
type HourlyView struct {
	Points []chart.Point `json:"points"`
	Chart  string        `json:"chart"`
}

type ExtraView struct {
	Pressure   string `json:"pressure"`
	Visibility string `json:"visibility"`
	Wind       string `json:"wind"`
	Sunrise    string `json:"sunrise"`
	Sunset     string `json:"sunset"`
}

type AirQualityView struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

func icon(code, size string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf(iconURL, code, size)
}

func round(v float64) int {
	return int(math.Round(v))
}

func currentView(s weather.WeatherSnapshot, city string) *CurrentView {
	place := s.Place
	if place == "" {
		place = city
	}
	return &CurrentView{
		Place:       place,
		Temperature: round(s.Temperature),
		FeelsLike:   round(s.FeelsLike),
		Humidity:    round(s.Humidity),
		Description: s.Description,
		IconURL:     icon(s.Icon, "@2x"),
	}
}

func forecastCards(series weather.ForecastSeries) ([]DayCard, error) {
	days, err := series.DailySummary(weather.SummaryDays)
	if err != nil {
		return nil, err
	}
	loc := series.Zone
	if loc == nil {
		loc = time.UTC
	}
	cards := make([]DayCard, 0, len(days))
	for _, d := range days {
		local := d.Time.In(loc)
		cards = append(cards, DayCard{
			Date:        local.Format("2006-01-02"),
			Label:       local.Format("Mon, Jan 2"),
			Temperature: round(d.Temperature),
			Description: d.Description,
			IconURL:     icon(d.Icon, ""),
		})
	}
	return cards, nil
}

func extraView(s weather.WeatherSnapshot) *ExtraView {
	loc := s.Zone
	if loc == nil {
		loc = time.UTC
	}
	return &ExtraView{
		Pressure:   fmt.Sprintf("%.0f hPa", s.Pressure),
		Visibility: fmt.Sprintf("%.1f km", s.Visibility/1000),
		Wind:       fmt.Sprintf("%g m/s • %.0f°", s.WindSpeed, s.WindDeg),
		Sunrise:    clockTime(s.Sunrise, loc),
		Sunset:     clockTime(s.Sunset, loc),
	}
}

func clockTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "—"
	}
	return t.In(loc).Format("3:04 PM")
}

func airQualityView(a *weather.AirQualityReading) *AirQualityView {
	if a == nil {
		return nil
	}
	return &AirQualityView{Index: a.Index, Label: a.Label()}
}
