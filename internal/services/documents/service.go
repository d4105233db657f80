package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/metrics"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/classifier"
	"github.com/ternarybob/kintari/internal/services/mining"
)

const (
	summaryChars     = 500
	searchIndexChars = 5000

	defaultListLimit   = 50
	maxListLimit       = 500
	defaultSearchLimit = 20
)

// Service builds document records from uploads and maintains them
type Service struct {
	storage     interfaces.DocumentStorage
	collections interfaces.CollectionStorage
	blobs       interfaces.BlobStore
	extractor   interfaces.PDFExtractor
	miner       *mining.Miner
	classifier  *classifier.Classifier
	pool        *Pool
	locks       *common.KeyedMutex
	minBytes    int64
	maxBytes    int64
	logger      arbor.ILogger
}

// NewService creates a new document service
func NewService(
	storage interfaces.DocumentStorage,
	collections interfaces.CollectionStorage,
	blobs interfaces.BlobStore,
	extractor interfaces.PDFExtractor,
	classifier *classifier.Classifier,
	config *common.ExtractionConfig,
	logger arbor.ILogger,
) *Service {
	timeout := common.ParseDuration(config.Timeout, 60*time.Second)
	return &Service{
		storage:     storage,
		collections: collections,
		blobs:       blobs,
		extractor:   extractor,
		miner:       mining.NewMiner(),
		classifier:  classifier,
		pool:        NewPool(config.Workers, timeout, logger),
		locks:       common.NewKeyedMutex(),
		minBytes:    config.MinUploadBytes,
		maxBytes:    config.MaxUploadBytes,
		logger:      logger,
	}
}

// Upload stores the raw bytes, runs the extraction pipeline and persists the record.
// Extraction failures are recorded on the record, never returned.
func (s *Service) Upload(ctx context.Context, req *interfaces.UploadRequest) (*models.DocumentRecord, error) {
	if err := s.validateUpload(req); err != nil {
		return nil, err
	}

	id := common.NewDocumentID()
	key := id + ".pdf"
	if _, err := s.blobs.Put(ctx, key, bytes.NewReader(req.Data)); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	now := time.Now().UTC()
	doc := &models.DocumentRecord{
		ID:          id,
		Filename:    filepath.Base(req.Filename),
		StoragePath: key,
		FileSize:    int64(len(req.Data)),
		Category:    strings.TrimSpace(req.Category),
		Tags:        normalizeTags(req.Tags),
		UploadedAt:  now,
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	s.build(ctx, doc, req.Data)

	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info().
		Str("doc_id", doc.ID).
		Str("filename", doc.Filename).
		Str("type", string(doc.DocumentType)).
		Int("pages", doc.PageCount).
		Bool("processed", doc.Processed).
		Msg("Document uploaded")

	return doc, nil
}

func (s *Service) validateUpload(req *interfaces.UploadRequest) error {
	if req == nil || strings.TrimSpace(req.Filename) == "" {
		return fmt.Errorf("%w: no file provided", common.ErrInvalidUpload)
	}
	if !strings.EqualFold(filepath.Ext(req.Filename), ".pdf") {
		return fmt.Errorf("%w: only PDF files are accepted, got %q", common.ErrInvalidUpload, req.Filename)
	}
	size := int64(len(req.Data))
	if size < s.minBytes {
		return fmt.Errorf("%w: file is %d bytes, minimum is %d", common.ErrInvalidUpload, size, s.minBytes)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return fmt.Errorf("%w: file is %d bytes, maximum is %d", common.ErrInvalidUpload, size, s.maxBytes)
	}
	return nil
}

// Reprocess re-runs the pipeline from the stored blob
func (s *Service) Reprocess(ctx context.Context, id string) (*models.DocumentRecord, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	rc, err := s.blobs.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}

	s.build(ctx, doc, data)

	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info().
		Str("doc_id", doc.ID).
		Str("type", string(doc.DocumentType)).
		Bool("processed", doc.Processed).
		Msg("Document reprocessed")

	return doc, nil
}

// build runs extraction on the pool, then mines and classifies the result.
// Every failure is absorbed into the record.
func (s *Service) build(ctx context.Context, doc *models.DocumentRecord, data []byte) {
	start := time.Now()
	content, err := s.pool.Run(ctx, func(ctx context.Context) (*models.ExtractedContent, error) {
		return s.extractor.Extract(ctx, bytes.NewReader(data), int64(len(data)))
	})
	metrics.ObserveExtraction(err, time.Since(start))

	now := time.Now().UTC()
	doc.UpdatedAt = now

	if content == nil || (err != nil && !errors.Is(err, common.ErrExtractionPartialFailure)) {
		if err == nil {
			err = fmt.Errorf("extractor returned no content")
		}
		s.applyFailure(doc, err)
		s.logger.Warn().
			Err(err).
			Str("doc_id", doc.ID).
			Str("filename", doc.Filename).
			Str("type", string(doc.DocumentType)).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("Extraction failed, record stored unprocessed")
		metrics.DocumentsByType.WithLabelValues(string(doc.DocumentType)).Inc()
		return
	}

	rule := s.applyContent(doc, content)
	if err != nil {
		doc.Processed = false
		doc.FailureReason = err.Error()
		doc.ProcessedAt = nil
	} else {
		doc.Processed = true
		doc.FailureReason = ""
		doc.ProcessedAt = &now
	}
	metrics.DocumentsByType.WithLabelValues(string(doc.DocumentType)).Inc()

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Str("rule", rule).
		Int("entities", len(doc.Entities.Emails)+len(doc.Entities.Phones)+len(doc.Entities.Dates)+len(doc.Entities.URLs)).
		Int("tables", len(doc.Tables)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Document built")
}

func (s *Service) applyContent(doc *models.DocumentRecord, content *models.ExtractedContent) string {
	doc.FullText = content.FullText
	doc.PageCount = content.PageCount
	doc.Tables = content.Tables
	doc.PDFMetadata = content.Metadata
	doc.Entities, doc.Keywords = s.miner.Mine(content.FullText)

	var rule string
	doc.DocumentType, rule = s.classifier.Match(doc.Filename, content.FullText)

	doc.Summary = summarize(content.FullText)
	doc.SearchIndex = searchIndex(doc.Filename, content.FullText)
	return rule
}

// applyFailure derives what it can from the filename alone
func (s *Service) applyFailure(doc *models.DocumentRecord, err error) {
	doc.FullText = ""
	doc.PageCount = 0
	doc.Tables = nil
	doc.PDFMetadata = models.PDFMetadata{}
	doc.Entities = models.EntityBundle{}
	doc.Keywords = nil
	doc.Summary = ""
	doc.DocumentType = s.classifier.Classify(doc.Filename, "")
	doc.SearchIndex = searchIndex(doc.Filename, "")
	doc.Processed = false
	doc.FailureReason = err.Error()
	doc.ProcessedAt = nil
}

// summarize returns the first 500 characters, with "..." when truncated
func summarize(text string) string {
	text = strings.TrimSpace(text)
	if head, cut := truncate(text, summaryChars); cut {
		return head + "..."
	}
	return text
}

func searchIndex(filename, text string) string {
	head, _ := truncate(text, searchIndexChars)
	return common.Fold(filename + "\n" + head)
}

// truncate cuts s to at most n characters
func truncate(s string, n int) (string, bool) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ParseTags splits a comma separated tag list
func ParseTags(raw string) []string {
	return normalizeTags(strings.Split(raw, ","))
}

// Get retrieves a document by ID
func (s *Service) Get(ctx context.Context, id string) (*models.DocumentRecord, error) {
	return s.storage.GetDocument(ctx, id)
}

// List returns a page of documents newest first and the unpaged total
func (s *Service) List(ctx context.Context, opts *interfaces.DocumentListOptions) ([]*models.DocumentRecord, int, error) {
	if opts == nil {
		opts = &interfaces.DocumentListOptions{}
	}
	if opts.Type != "" && !opts.Type.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown document type %q", common.ErrInvalidInput, opts.Type)
	}
	page := *opts
	switch {
	case page.Limit <= 0:
		page.Limit = defaultListLimit
	case page.Limit > maxListLimit:
		page.Limit = maxListLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	docs, err := s.storage.ListDocuments(ctx, &page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.storage.CountDocuments(ctx, &page)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Search matches filename, full text and summary by substring
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*models.DocumentRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.DocumentRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.storage.SearchDocuments(ctx, query, limit)
}

// Delete removes the blob and then the record
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.StoragePath); err != nil {
		if !errors.Is(err, common.ErrBlobNotFound) {
			return fmt.Errorf("failed to delete stored file: %w", err)
		}
		s.logger.Warn().Str("doc_id", id).Str("key", doc.StoragePath).Msg("Stored file already missing")
	}

	if err := s.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Info().Str("doc_id", id).Str("filename", doc.Filename).Msg("Document deleted")
	return nil
}

// UpdateTags replaces the tag set
func (s *Service) UpdateTags(ctx context.Context, id string, tags []string) (*models.DocumentRecord, error) {
	return s.mutate(ctx, id, func(doc *models.DocumentRecord) error {
		doc.Tags = normalizeTags(tags)
		return nil
	})
}

// UpdateCategory replaces the category
func (s *Service) UpdateCategory(ctx context.Context, id string, category string) (*models.DocumentRecord, error) {
	return s.mutate(ctx, id, func(doc *models.DocumentRecord) error {
		doc.Category = strings.TrimSpace(category)
		return nil
	})
}

// Reclassify overrides the classifier's label
func (s *Service) Reclassify(ctx context.Context, id string, label models.DocumentType) (*models.DocumentRecord, error) {
	if !label.IsValid() {
		return nil, fmt.Errorf("%w: unknown document type %q", common.ErrInvalidInput, label)
	}
	return s.mutate(ctx, id, func(doc *models.DocumentRecord) error {
		doc.DocumentType = label
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, id string, apply func(doc *models.DocumentRecord) error) (*models.DocumentRecord, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Now().UTC()

	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return doc, nil
}

// Stats aggregates the document store from one snapshot
func (s *Service) Stats(ctx context.Context) (*models.DocumentStats, error) {
	docs, err := s.storage.AllDocuments(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DocumentStats{
		Total:      len(docs),
		ByType:     make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, doc := range docs {
		if doc.Processed {
			stats.Processed++
		}
		stats.ByType[string(doc.DocumentType)]++
		category := doc.Category
		if category == "" {
			category = models.UnspecifiedBucket
		}
		stats.ByCategory[category]++
		stats.TotalStorageBytes += doc.FileSize
	}
	stats.Unprocessed = stats.Total - stats.Processed
	stats.TotalStorageMB = bytesToMB(stats.TotalStorageBytes)
	return stats, nil
}

// bytesToMB rounds to two decimals
func bytesToMB(b int64) float64 {
	return float64(b*100/(1024*1024)) / 100
}
