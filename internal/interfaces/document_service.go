package interfaces

import (
	"context"

	"github.com/ternarybob/kintari/internal/models"
)

// UploadRequest carries a raw upload into the record builder
type UploadRequest struct {
	Filename string
	Category string
	Tags     []string
	Data     []byte
}

// DocumentService builds and maintains document records
type DocumentService interface {
	// Upload stores the blob, extracts, mines and classifies it, and persists the record.
	// Extraction failures are recorded on the record (Processed=false), not returned.
	Upload(ctx context.Context, req *UploadRequest) (*models.DocumentRecord, error)

	// Reprocess re-runs the pipeline from the stored blob
	Reprocess(ctx context.Context, id string) (*models.DocumentRecord, error)

	Get(ctx context.Context, id string) (*models.DocumentRecord, error)
	List(ctx context.Context, opts *DocumentListOptions) ([]*models.DocumentRecord, int, error)
	Search(ctx context.Context, query string, limit int) ([]*models.DocumentRecord, error)
	Delete(ctx context.Context, id string) error

	// Metadata edits
	UpdateTags(ctx context.Context, id string, tags []string) (*models.DocumentRecord, error)
	UpdateCategory(ctx context.Context, id string, category string) (*models.DocumentRecord, error)
	Reclassify(ctx context.Context, id string, label models.DocumentType) (*models.DocumentRecord, error)

	Stats(ctx context.Context) (*models.DocumentStats, error)
}

// CollectionService manages named document groupings
type CollectionService interface {
	CreateCollection(ctx context.Context, name, description string) (*models.DocumentCollection, error)
	GetCollection(ctx context.Context, id string) (*models.DocumentCollection, error)
	ListCollections(ctx context.Context) ([]*models.DocumentCollection, error)
	AddDocuments(ctx context.Context, id string, documentIDs []string) (*models.DocumentCollection, error)
}
