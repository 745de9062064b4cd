package weather

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// conditionTable is matched top to bottom and the first row wins. A text may
// satisfy several rows ("Thunderstorm" contains "storm"), so the order is part
// of the contract.
var conditionTable = []struct {
	condition Condition
	keywords  []string
}{
	{ConditionClouds, []string{"cloud", "overcast"}},
	{ConditionRain, []string{"rain", "drizzle", "shower"}},
	{ConditionThunderstorm, []string{"thunderstorm", "thunder", "storm"}},
	{ConditionClear, []string{"clear", "sunny"}},
	{ConditionSnow, []string{"snow", "sleet", "blizzard"}},
	{ConditionMist, []string{"mist", "fog", "haze", "smoke"}},
}

// Classify maps a provider condition text (for example "Thunderstorm" or
// "Drizzle") onto the closed Condition set.
func Classify(text string) Condition {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return ConditionDefault
	}
	for _, row := range conditionTable {
		if common.HasAny(t, row.keywords...) {
			return row.condition
		}
	}
	return ConditionDefault
}
