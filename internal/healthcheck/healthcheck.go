// Package healthcheck polls a running server until it answers.
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bibujohny/rentalAI/internal/utils"
)

var ErrUnhealthy = errors.New("service did not become healthy")

// Probe reports nil when the target is healthy.
type Probe func(ctx context.Context) error

// HTTPProbe treats any 2xx from url as healthy.
func HTTPProbe(url string, timeout time.Duration) Probe {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return func(ctx context.Context) error {
		resp, err := client.R().SetContext(ctx).Get(url)
		if err != nil {
			return fmt.Errorf("GET %s: %w", url, err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("GET %s: status %d", url, resp.StatusCode())
		}
		return nil
	}
}

// WaitHealthy calls probe up to attempts times, delay apart, and returns the
// number of attempts it used. It stops at the first success.
func WaitHealthy(ctx context.Context, probe Probe, attempts int, delay time.Duration) (int, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		lastErr = probe(ctx)
		if lastErr == nil {
			utils.Logger.WithField("attempt", i).Info("Health check passed")
			return i, nil
		}
		utils.Logger.WithError(lastErr).WithField("attempt", i).Debug("Health check failed")
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return i, fmt.Errorf("%w: %v", ErrUnhealthy, ctx.Err())
		case <-time.After(delay):
		}
	}
	return attempts, fmt.Errorf("%w after %d attempts: %v", ErrUnhealthy, attempts, lastErr)
}
