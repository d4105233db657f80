// Package janitor reconciles the blob store with the record store on a schedule.
// The two stores are not transactional, so an interrupted upload or delete can
// leave a blob without a record.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
)

// SweepResult reports one reconciliation pass
type SweepResult struct {
	Blobs        int      `json:"blobs"`
	Records      int      `json:"records"`
	Removed      []string `json:"removed"`       // Orphan blobs deleted this pass
	Pending      []string `json:"pending"`       // Orphans first seen this pass
	MissingBlobs []string `json:"missing_blobs"` // Record ids whose blob is gone
}

// Janitor removes orphan blobs. A blob is only deleted once it has been an
// orphan in two consecutive sweeps, so an upload between its blob write and
// record save is never swept. Config validation keeps the sweep interval
// longer than the extraction timeout.
type Janitor struct {
	blobs     interfaces.BlobStore
	documents interfaces.DocumentStorage
	cron      *cron.Cron
	logger    arbor.ILogger

	mu        sync.Mutex // Serialises sweeps and guards candidates
	candidate map[string]struct{}
	running   bool
}

// New creates a janitor
func New(blobs interfaces.BlobStore, documents interfaces.DocumentStorage, logger arbor.ILogger) *Janitor {
	return &Janitor{
		blobs:     blobs,
		documents: documents,
		cron:      cron.New(),
		logger:    logger,
		candidate: make(map[string]struct{}),
	}
}

// Start schedules sweeps with a 5-field cron expression
func (j *Janitor) Start(schedule string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return fmt.Errorf("janitor already running")
	}

	_, err := j.cron.AddFunc(schedule, func() {
		defer common.Recover(j.logger, "blob-janitor")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			j.logger.Error().Err(err).Msg("Blob sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add janitor schedule: %w", err)
	}

	j.cron.Start()
	j.running = true
	j.logger.Info().Str("schedule", schedule).Msg("Blob janitor started")
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.logger.Info().Msg("Blob janitor stopped")
}

// Sweep runs one reconciliation pass
func (j *Janitor) Sweep(ctx context.Context) (*SweepResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	start := time.Now()
	keys, err := j.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	docs, err := j.documents.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	result := &SweepResult{Blobs: len(keys), Records: len(docs)}

	present := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		present[key] = struct{}{}
	}
	referenced := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		referenced[d.StoragePath] = struct{}{}
		if _, ok := present[d.StoragePath]; !ok {
			result.MissingBlobs = append(result.MissingBlobs, d.ID)
		}
	}

	next := make(map[string]struct{})
	for _, key := range keys {
		if _, ok := referenced[key]; ok {
			continue
		}
		if _, seen := j.candidate[key]; !seen {
			next[key] = struct{}{}
			result.Pending = append(result.Pending, key)
			continue
		}
		if err := j.blobs.Delete(ctx, key); err != nil && !errors.Is(err, common.ErrBlobNotFound) {
			j.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove orphan blob")
			next[key] = struct{}{}
			continue
		}
		result.Removed = append(result.Removed, key)
	}
	j.candidate = next

	sort.Strings(result.MissingBlobs)
	for _, id := range result.MissingBlobs {
		j.logger.Warn().Str("document_id", id).Msg("Document record has no blob")
	}

	j.logger.Info().
		Int("blobs", result.Blobs).
		Int("records", result.Records).
		Int("removed", len(result.Removed)).
		Int("pending", len(result.Pending)).
		Int("missing_blobs", len(result.MissingBlobs)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Blob sweep complete")
	return result, nil
}
