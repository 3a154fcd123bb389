package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryRateLimited(t *testing.T) {
	var pauses []time.Duration
	sleep := func(d time.Duration) { pauses = append(pauses, d) }

	calls := 0
	err := retryRateLimited(5, 100*time.Millisecond, sleep, func() error {
		calls++
		if calls < 3 {
			return errors.New("HTTP 429 Too Many Requests")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, pauses)
}

func TestRetryRateLimitedGivesUp(t *testing.T) {
	pauses := 0
	limited := errors.New("status 429")
	err := retryRateLimited(3, time.Millisecond, func(time.Duration) { pauses++ }, func() error { return limited })
	require.ErrorIs(t, err, limited)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 2, pauses)
}

func TestRetryRateLimitedOtherErrorStops(t *testing.T) {
	calls := 0
	boom := errors.New("invalid token")
	err := retryRateLimited(5, time.Millisecond, func(time.Duration) { t.Fatal("should not sleep") }, func() error {
		calls++
		return boom
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestNewBWSSecretsClientRequiresEnv(t *testing.T) {
	t.Setenv("BWS_ACCESS_TOKEN", "")
	t.Setenv("BWS_ORGANIZATION_ID", "org")
	_, err := NewBWSSecretsClient()
	assert.EqualError(t, err, "BWS_ACCESS_TOKEN is not set")

	t.Setenv("BWS_ACCESS_TOKEN", "tok")
	t.Setenv("BWS_ORGANIZATION_ID", " ")
	_, err = NewBWSSecretsClient()
	assert.EqualError(t, err, "BWS_ORGANIZATION_ID is not set")
}
