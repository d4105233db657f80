package interfaces

import (
	"context"

	"github.com/ternarybob/kintari/internal/models"
)

// DocumentListOptions filters and pages document listings
type DocumentListOptions struct {
	Type     models.DocumentType
	Category string
	Search   string // Substring over filename and leading text, case and diacritic insensitive
	Limit    int
	Offset   int
}

// MemberListOptions filters and pages member listings
type MemberListOptions struct {
	Search string // Substring over name
	Limit  int
	Offset int
}

// DocumentStorage - interface for document record persistence
type DocumentStorage interface {
	SaveDocument(ctx context.Context, doc *models.DocumentRecord) error
	GetDocument(ctx context.Context, id string) (*models.DocumentRecord, error)
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns records newest upload first
	ListDocuments(ctx context.Context, opts *DocumentListOptions) ([]*models.DocumentRecord, error)
	CountDocuments(ctx context.Context, opts *DocumentListOptions) (int, error)

	// SearchDocuments matches filename, full text and summary by substring
	SearchDocuments(ctx context.Context, query string, limit int) ([]*models.DocumentRecord, error)

	// AllDocuments reads every record in a single read transaction
	AllDocuments(ctx context.Context) ([]*models.DocumentRecord, error)
}

// MemberStorage - interface for member record persistence
type MemberStorage interface {
	SaveMember(ctx context.Context, member *models.Member) error

	// SaveMembers writes all members in one transaction; nothing is written on error
	SaveMembers(ctx context.Context, members []*models.Member) error

	GetMember(ctx context.Context, id string) (*models.Member, error)
	DeleteMember(ctx context.Context, id string) error
	ListMembers(ctx context.Context, opts *MemberListOptions) ([]*models.Member, error)
	SearchMembersByName(ctx context.Context, name string, limit int) ([]*models.Member, error)
	CountMembers(ctx context.Context) (int, error)

	// SnapshotMembers reads every member in a single read transaction
	SnapshotMembers(ctx context.Context) ([]*models.Member, error)
}

// CollectionStorage - interface for document collections
type CollectionStorage interface {
	SaveCollection(ctx context.Context, collection *models.DocumentCollection) error
	GetCollection(ctx context.Context, id string) (*models.DocumentCollection, error)
	ListCollections(ctx context.Context) ([]*models.DocumentCollection, error)
}

// StorageManager - composite interface for the record store
type StorageManager interface {
	DocumentStorage() DocumentStorage
	MemberStorage() MemberStorage
	CollectionStorage() CollectionStorage
	Close() error
}
