package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CollectionStorage implements the CollectionStorage interface for Badger
type CollectionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCollectionStorage creates a new CollectionStorage instance
func NewCollectionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CollectionStorage {
	return &CollectionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CollectionStorage) SaveCollection(ctx context.Context, collection *models.DocumentCollection) error {
	if collection.ID == "" {
		return fmt.Errorf("collection ID is required")
	}

	now := time.Now().UTC()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = now
	}
	collection.UpdatedAt = now

	if err := s.db.Store().Upsert(collection.ID, collection); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

func (s *CollectionStorage) GetCollection(ctx context.Context, id string) (*models.DocumentCollection, error) {
	var collection models.DocumentCollection
	if err := s.db.Store().Get(id, &collection); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("collection %s: %w", id, common.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &collection, nil
}

func (s *CollectionStorage) ListCollections(ctx context.Context) ([]*models.DocumentCollection, error) {
	var collections []models.DocumentCollection
	if err := s.db.Store().Find(&collections, nil); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	result := make([]*models.DocumentCollection, len(collections))
	for i := range collections {
		result[i] = &collections[i]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
