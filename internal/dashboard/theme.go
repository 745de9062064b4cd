package dashboard

import "github.com/i474232898/weather-dashboard/internal/weather"

// Theme is the background applied for a condition.
type Theme struct {
	Name       string `json:"name"`
	Background string `json:"background"`
}

// DefaultTheme is used when no row of the theme table matches.
var DefaultTheme = Theme{Name: "default", Background: "images/default.jpg"}

// themeTable is checked in order; the first matching row wins.
var themeTable = []struct {
	condition weather.Condition
	theme     Theme
}{
	{weather.ConditionClouds, Theme{Name: "cloudy", Background: "images/cloudy.jpg"}},
	{weather.ConditionRain, Theme{Name: "rainy", Background: "images/rainy.jpg"}},
	{weather.ConditionThunderstorm, Theme{Name: "stormy", Background: "images/stormy.jpg"}},
	{weather.ConditionClear, Theme{Name: "sunny", Background: "images/sunny.jpg"}},
	{weather.ConditionSnow, Theme{Name: "snowy", Background: "images/snowy.jpg"}},
	{weather.ConditionMist, Theme{Name: "foggy", Background: "images/foggy.jpg"}},
}

// ThemeFor returns the background theme for a condition.
func ThemeFor(c weather.Condition) Theme {
	for _, row := range themeTable {
		if row.condition == c {
			return row.theme
		}
	}
	return DefaultTheme
}
