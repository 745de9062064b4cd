package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
	Limiter *rate.Limiter
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// upstreamStatus carries a retryable non-success response out of the breaker.
type upstreamStatus struct {
	err    error
	status int
	body   []byte
}

func (u *upstreamStatus) Error() string { return u.err.Error() }
func (u *upstreamStatus) Unwrap() error { return u.err }

// doRequestWithResilience executes the HTTP request with rate limiting, retries,
// exponential backoff, and a circuit breaker. Only transport failures, 429 and
// 5xx are retried and counted by the breaker; other non-success statuses are
// returned at once as *weather.ProviderError.
func doRequestWithResilience(
	ctx context.Context,
	op string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, &weather.TransportError{Op: op, Err: errNoHTTPClient}
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, &weather.TransportError{Op: op, Err: errInvalidConfig}
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, &weather.TransportError{Op: op, Err: ctx.Err()}
		}

		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				return nil, &weather.TransportError{Op: op, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
			}
		}

		req, err := buildRequest()
		if err != nil {
			return nil, &weather.TransportError{Op: op, Err: err}
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				resp.Body.Close()
				cause := errServerError
				if resp.StatusCode == http.StatusTooManyRequests {
					cause = errRateLimited
				}
				return nil, &upstreamStatus{err: cause, status: resp.StatusCode, body: body}
			}

			// Client errors are the caller's fault and must not open the circuit.
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, &weather.TransportError{Op: op, Err: fmt.Errorf("unexpected result type from circuit breaker")}
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				defer resp.Body.Close()
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				return nil, newProviderError(op, resp.StatusCode, body)
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.TransportError{Op: op, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, finalError(op, lastErr)
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &weather.TransportError{Op: op, Err: ctx.Err()}
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

func finalError(op string, err error) error {
	var us *upstreamStatus
	if errors.As(err, &us) {
		return newProviderError(op, us.status, us.body)
	}
	return &weather.TransportError{Op: op, Err: err}
}

// newProviderError extracts the provider's message from an error body.
// OpenWeatherMap answers {"cod":"404","message":"city not found"}.
func newProviderError(op string, status int, body []byte) *weather.ProviderError {
	var payload struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &weather.ProviderError{Op: op, Status: status, Message: msg}
}

// decodeJSON decodes a successful response body, closing it.
func decodeJSON(op string, resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &weather.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
