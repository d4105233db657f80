package interfaces

import (
	"context"
	"io"

	"github.com/ternarybob/kintari/internal/models"
)

// MemberService imports and maintains member records
type MemberService interface {
	// Import reads a CSV roster. A missing required column rejects the whole file.
	Import(ctx context.Context, r io.Reader) (*models.ImportResult, error)

	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	Get(ctx context.Context, id string) (*models.Member, error)
	Update(ctx context.Context, id string, member *models.Member) (*models.Member, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts *MemberListOptions) ([]*models.Member, int, error)
}

// StatsEngine aggregates the member roster
type StatsEngine interface {
	Compute(ctx context.Context) (*models.MemberStats, error)
}
