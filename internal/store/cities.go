package store

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// CitiesKey is the key holding the tracked city list.
const CitiesKey = "weather_cities"

// CityList persists the ordered list of tracked city display names as a JSON
// array under CitiesKey. It performs no validation or deduplication.
type CityList struct {
	kv     KV
	logger *zap.Logger
}

// NewCityList creates a CityList over kv.
func NewCityList(kv KV, logger *zap.Logger) *CityList {
	return &CityList{
		kv:     kv,
		logger: logger.Named("cities"),
	}
}

// Load returns the stored names in order. A missing, unreadable or corrupt
// value is treated as an empty list.
func (c *CityList) Load() []string {
	raw, ok, err := c.kv.Get(CitiesKey)
	if err != nil {
		c.logger.Warn("city store unreadable; treating as empty", zap.Error(err))
		return []string{}
	}
	if !ok {
		return []string{}
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		c.logger.Warn("city store corrupt; treating as empty", zap.Error(err))
		return []string{}
	}
	if names == nil {
		return []string{}
	}
	return names
}

// Save replaces the stored list.
func (c *CityList) Save(names []string) error {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode city list: %w", err)
	}
	return c.kv.Set(CitiesKey, raw)
}

// Clear removes the stored list.
func (c *CityList) Clear() error {
	return c.kv.Delete(CitiesKey)
}
