package badger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(ctx context.Context, doc *models.DocumentRecord) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	now := time.Now().UTC()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(ctx context.Context, id string) (*models.DocumentRecord, error) {
	var doc models.DocumentRecord
	if err := s.db.Store().Get(id, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, common.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) DeleteDocument(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.DocumentRecord{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("document %s: %w", id, common.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) ListDocuments(ctx context.Context, opts *interfaces.DocumentListOptions) ([]*models.DocumentRecord, error) {
	query, err := documentQuery(opts)
	if err != nil {
		return nil, err
	}

	var docs []models.DocumentRecord
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := newestFirst(docs)

	// Pagination is applied after ordering so pages are stable by upload time
	if opts != nil {
		result = paginate(result, opts.Offset, opts.Limit)
	}
	return result, nil
}

func (s *DocumentStorage) CountDocuments(ctx context.Context, opts *interfaces.DocumentListOptions) (int, error) {
	query, err := documentQuery(opts)
	if err != nil {
		return 0, err
	}

	count, err := s.db.Store().Count(&models.DocumentRecord{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) SearchDocuments(ctx context.Context, query string, limit int) ([]*models.DocumentRecord, error) {
	// Escape regex special characters in query to treat it as literal text
	regex, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var docs []models.DocumentRecord
	err = s.db.Store().Find(&docs,
		badgerhold.Where("Filename").RegExp(regex).
			Or(badgerhold.Where("FullText").RegExp(regex)).
			Or(badgerhold.Where("Summary").RegExp(regex)))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return paginate(newestFirst(docs), 0, limit), nil
}

func (s *DocumentStorage) AllDocuments(ctx context.Context) ([]*models.DocumentRecord, error) {
	var docs []models.DocumentRecord
	err := s.db.View(func(tx *badgerdb.Txn) error {
		return s.db.Store().TxFind(tx, &docs, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return newestFirst(docs), nil
}

func documentQuery(opts *interfaces.DocumentListOptions) (*badgerhold.Query, error) {
	query := badgerhold.Where("ID").Ne("") // Select all
	if opts == nil {
		return query, nil
	}

	if opts.Type != "" {
		query = query.And("DocumentType").Eq(opts.Type)
	}
	if opts.Category != "" {
		query = query.And("Category").Eq(opts.Category)
	}
	if opts.Search != "" {
		regex, err := regexp.Compile(regexp.QuoteMeta(common.Fold(opts.Search)))
		if err != nil {
			return nil, fmt.Errorf("invalid search: %w", err)
		}
		query = query.And("SearchIndex").RegExp(regex)
	}
	return query, nil
}

func newestFirst(docs []models.DocumentRecord) []*models.DocumentRecord {
	result := make([]*models.DocumentRecord, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
