package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrAirQualityUnavailable is returned when air quality cannot be fetched
	// (no credential configured, or no coordinates to query).
	ErrAirQualityUnavailable = errors.New("air quality unavailable")

	// ErrNoCredential is returned by operations that require a provider key.
	ErrNoCredential = errors.New("provider credential is not configured")
)

// ProviderError is a non-success response from the upstream provider.
type ProviderError struct {
	Op      string
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: provider error (status %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: provider error (status %d): %s", e.Op, e.Status, e.Message)
}

// TransportError is a failure to reach the provider or to read its response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
