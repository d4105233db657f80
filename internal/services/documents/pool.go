package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/metrics"
	"github.com/ternarybob/kintari/internal/models"
)

// ExtractFunc performs one extraction under the worker context
type ExtractFunc func(ctx context.Context) (*models.ExtractedContent, error)

// Pool bounds concurrent extractions with a semaphore.
// Callers wait synchronously up to the timeout; queueing time counts against it.
// On timeout the worker context is cancelled and its result discarded.
type Pool struct {
	sem     chan struct{}
	timeout time.Duration
	logger  arbor.ILogger
}

type extractResult struct {
	content *models.ExtractedContent
	err     error
}

// NewPool creates a pool with the given number of workers
func NewPool(workers int, timeout time.Duration, logger arbor.ILogger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		sem:     make(chan struct{}, workers),
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes fn on a worker slot and waits for its result
func (p *Pool) Run(ctx context.Context, fn ExtractFunc) (*models.ExtractedContent, error) {
	wctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	select {
	case p.sem <- struct{}{}:
	case <-wctx.Done():
		return nil, p.abandoned(wctx, "queued")
	}

	// Buffered so an abandoned worker never blocks on send
	results := make(chan extractResult, 1)
	go func() {
		defer func() { <-p.sem }()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("Extraction worker panicked")
				results <- extractResult{err: fmt.Errorf("extraction panicked: %v", r)}
			}
		}()

		metrics.ExtractionsInFlight.Inc()
		defer metrics.ExtractionsInFlight.Dec()

		content, err := fn(wctx)
		results <- extractResult{content: content, err: err}
	}()

	select {
	case r := <-results:
		return r.content, r.err
	case <-wctx.Done():
		return nil, p.abandoned(wctx, "running")
	}
}

func (p *Pool) abandoned(ctx context.Context, stage string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		p.logger.Warn().Str("stage", stage).Str("timeout", p.timeout.String()).Msg("Extraction abandoned after timeout")
		return fmt.Errorf("%w: abandoned after %s", common.ErrExtractionTimeout, p.timeout)
	}
	return fmt.Errorf("extraction cancelled: %w", ctx.Err())
}
