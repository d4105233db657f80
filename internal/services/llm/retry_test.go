package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: quota hit. Please retry in 45.5s., Status: RESOURCE_EXHAUSTED")
	assert.Equal(t, 45500*time.Millisecond, ExtractRetryDelay(err))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("boom")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoff(t *testing.T) {
	c := NewDefaultRetryConfig()

	assert.Equal(t, 2*time.Second, c.CalculateBackoff(0, 0))
	assert.Equal(t, 3*time.Second, c.CalculateBackoff(1, 0))
	assert.Equal(t, 4*time.Second, c.CalculateBackoff(0, 4*time.Second))
	assert.Equal(t, c.MaxBackoff, c.CalculateBackoff(0, time.Minute))
}

func TestRetryDo_RetriesRateLimits(t *testing.T) {
	calls := 0
	retries := 0
	err := fastRetry().Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("Error 429 RESOURCE_EXHAUSTED")
		}
		return nil
	}, func(int, time.Duration, error) { retries++ })

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestRetryDo_GivesUp(t *testing.T) {
	calls := 0
	err := fastRetry().Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("429")
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryDo_OtherErrorsNotRetried(t *testing.T) {
	calls := 0
	err := fastRetry().Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("bad request")
	}, nil)

	assert.EqualError(t, err, "bad request")
	assert.Equal(t, 1, calls)
}

func TestRetryDo_BackoffPastDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	err := NewDefaultRetryConfig().Do(ctx, func(context.Context) error {
		calls++
		return errors.New("429")
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
