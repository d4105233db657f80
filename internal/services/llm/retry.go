package llm

import (
	"context"
	"regexp"
	"strconv"
	"time"
)

// RetryConfig defines retry behaviour for provider rate limit responses.
// A chat request waits on the call, so backoffs stay short and a retry is only
// attempted when it still fits before the caller's deadline.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

const (
	DefaultMaxRetries        = 2
	DefaultInitialBackoff    = 2 * time.Second
	DefaultMaxBackoff        = 10 * time.Second
	DefaultBackoffMultiplier = 1.5
)

// NewDefaultRetryConfig returns the retry settings used by the providers
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from an error.
// Returns 0 if no delay is found.
//
// Example error message:
// "Error 429, Message: ... Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}
	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff computes the wait before retry attempt (0-based).
// An API-suggested delay replaces InitialBackoff. The result is capped at MaxBackoff.
func (c *RetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		base = apiDelay
	}
	multiplier := 1.0
	for range attempt {
		multiplier *= c.BackoffMultiplier
	}
	backoff := time.Duration(float64(base) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

// Do runs call, retrying rate limit errors while the backoff fits before ctx's deadline
func (c *RetryConfig) Do(ctx context.Context, call func(ctx context.Context) error, onRetry func(attempt int, backoff time.Duration, err error)) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = call(ctx)
		if err == nil || !IsRateLimitError(err) || attempt >= c.MaxRetries {
			return err
		}

		backoff := c.CalculateBackoff(attempt, ExtractRetryDelay(err))
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= backoff {
			return err
		}
		if onRetry != nil {
			onRetry(attempt+1, backoff, err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
