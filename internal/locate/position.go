// Package locate resolves the user's position to a city name.
package locate

import (
	"context"
	"errors"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ErrorKind classifies a geolocation failure.
type ErrorKind int

// Kinds share their values with the browser's GeolocationPositionError codes.
const (
	Unknown             ErrorKind = 0
	PermissionDenied    ErrorKind = 1
	PositionUnavailable ErrorKind = 2
	Timeout             ErrorKind = 3
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// GeolocationError is a failure to obtain the user's position.
type GeolocationError struct {
	Kind ErrorKind
}

func (e *GeolocationError) Error() string {
	switch e.Kind {
	case PermissionDenied:
		return "User denied the request for Geolocation."
	case PositionUnavailable:
		return "Location information is unavailable."
	case Timeout:
		return "The request to get user location timed out."
	default:
		return "An unknown error occurred."
	}
}

// KindFromCode maps a browser error code to a kind; unknown codes map to Unknown.
func KindFromCode(code int) ErrorKind {
	switch k := ErrorKind(code); k {
	case PermissionDenied, PositionUnavailable, Timeout:
		return k
	default:
		return Unknown
	}
}

// IsGeolocationError reports whether err is a *GeolocationError.
func IsGeolocationError(err error) bool {
	var ge *GeolocationError
	return errors.As(err, &ge)
}

// Reported is a position the browser already resolved (or failed to).
type Reported struct {
	Coordinates *weather.Coordinates
	ErrorCode   int
}

// CurrentPosition returns the reported coordinates, or a *GeolocationError
// when the browser reported a failure or no coordinates at all.
func (r Reported) CurrentPosition(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, &GeolocationError{Kind: Timeout}
	}
	if r.ErrorCode != 0 {
		return weather.Coordinates{}, &GeolocationError{Kind: KindFromCode(r.ErrorCode)}
	}
	if r.Coordinates == nil {
		return weather.Coordinates{}, &GeolocationError{Kind: PositionUnavailable}
	}
	return *r.Coordinates, nil
}
