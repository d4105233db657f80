package interfaces

import (
	"context"
)

// GenerativeModel answers a question from a context bundle.
// Errors wrap one of common.ErrModelTimeout, common.ErrModelQuotaExceeded,
// common.ErrModelMalformed or common.ErrExternalModelUnavailable.
type GenerativeModel interface {
	Answer(ctx context.Context, contextText, question string) (string, error)
	Name() string
	Close() error
}
