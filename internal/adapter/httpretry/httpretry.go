// Package httpretry executes HTTP requests with retries, exponential
// backoff, and a circuit breaker. Both upstream API clients share it.
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
)

// Backoff controls retry behaviour. Delays double per attempt, capped at
// MaxDelay.
type Backoff struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var (
	// ErrRateLimited marks an HTTP 429 response.
	ErrRateLimited = errors.New("rate limited")
	// ErrServerError marks an HTTP 5xx response.
	ErrServerError = errors.New("server error")
)

// Do executes the request built by build, retrying rate limits, server
// errors, and transport failures. Non-retryable statuses (4xx other than
// 429) return the response to the caller for inspection. The breaker opens
// after repeated failures so a struggling API is not hammered; the clock is
// injectable so tests run without real sleeps.
func Do(
	ctx context.Context,
	client *http.Client,
	breaker *gobreaker.CircuitBreaker,
	clock clockwork.Clock,
	backoff Backoff,
	build func() (*http.Request, error),
) (*http.Response, error) {
	delay := backoff.BaseDelay
	var lastErr error

	for attempt := 0; attempt <= backoff.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if attempt > 0 {
			if !sleep(ctx, clock, delay) {
				return nil, ctx.Err()
			}
			delay = nextDelay(delay, backoff.MaxDelay)
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := breaker.Execute(func() (interface{}, error) {
			resp, execErr := client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, ErrRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: status %d", ErrServerError, resp.StatusCode)
			}
			return resp, nil
		})
		if err != nil {
			// Breaker rejections land here too; the backoff at the top of
			// the loop keeps open-state probes from spinning.
			lastErr = err
			continue
		}
		return result.(*http.Response), nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", backoff.MaxRetries+1, lastErr)
}

// NewBreaker creates a circuit breaker tuned for chunked API fetching:
// trip after five consecutive failures, probe again after 30 seconds.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

func nextDelay(current, maxDelay time.Duration) time.Duration {
	next := current * 2
	if next > maxDelay {
		return maxDelay
	}
	return next
}

func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-clock.After(d):
		return true
	}
}
