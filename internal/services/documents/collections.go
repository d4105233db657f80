package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
)

// CreateCollection creates an empty active collection
func (s *Service) CreateCollection(ctx context.Context, name, description string) (*models.DocumentCollection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", common.ErrInvalidInput)
	}

	now := time.Now().UTC()
	collection := &models.DocumentCollection{
		ID:          common.NewCollectionID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		DocumentIDs: []string{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.collections.SaveCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}

	s.logger.Info().Str("collection_id", collection.ID).Str("name", name).Msg("Collection created")
	return collection, nil
}

// GetCollection retrieves a collection by ID
func (s *Service) GetCollection(ctx context.Context, id string) (*models.DocumentCollection, error) {
	return s.collections.GetCollection(ctx, id)
}

// ListCollections returns every collection, newest first
func (s *Service) ListCollections(ctx context.Context) ([]*models.DocumentCollection, error) {
	return s.collections.ListCollections(ctx)
}

// AddDocuments appends existing documents to a collection, skipping ones already present
func (s *Service) AddDocuments(ctx context.Context, id string, documentIDs []string) (*models.DocumentCollection, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	collection, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(collection.DocumentIDs))
	for _, docID := range collection.DocumentIDs {
		present[docID] = struct{}{}
	}

	added := 0
	for _, docID := range documentIDs {
		docID = strings.TrimSpace(docID)
		if _, ok := present[docID]; ok || docID == "" {
			continue
		}
		if _, err := s.storage.GetDocument(ctx, docID); err != nil {
			return nil, err
		}
		present[docID] = struct{}{}
		collection.DocumentIDs = append(collection.DocumentIDs, docID)
		added++
	}

	if added == 0 {
		return collection, nil
	}

	collection.UpdatedAt = time.Now().UTC()
	if err := s.collections.SaveCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}

	s.logger.Info().Str("collection_id", id).Int("added", added).Msg("Documents added to collection")
	return collection, nil
}
