package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ternarybob/kintari/internal/common"
)

// IsRateLimitError checks if an error is a provider rate limit error.
// Matches 429 status codes and RESOURCE_EXHAUSTED errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(errStr), "quota")
}

// classifyError wraps a provider error in the matching model sentinel
func classifyError(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrModelTimeout),
		errors.Is(err, common.ErrModelQuotaExceeded),
		errors.Is(err, common.ErrModelMalformed),
		errors.Is(err, common.ErrExternalModelUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", common.ErrModelTimeout, err)
	case IsRateLimitError(err):
		return fmt.Errorf("%w: %w", common.ErrModelQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %w", common.ErrExternalModelUnavailable, err)
}
