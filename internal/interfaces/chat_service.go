package interfaces

import (
	"context"

	"github.com/ternarybob/kintari/internal/models"
)

// ChatService answers natural-language questions over members and documents
type ChatService interface {
	// Answer routes the question and composes a response.
	// Model failures yield a Partial answer rather than an error.
	Answer(ctx context.Context, question string) (*models.Answer, error)

	// ContextPreview returns the context bundle a generic question would send
	ContextPreview(ctx context.Context) (*models.ContextBundle, error)

	// ExportPDF composes the answer and renders it as a PDF report
	ExportPDF(ctx context.Context, question string) ([]byte, error)
}

// AnalyticsService serves dashboard aggregates
type AnalyticsService interface {
	Members(ctx context.Context) (*models.MemberAnalytics, error)
	Documents(ctx context.Context) (*models.DocumentAnalytics, error)
	Overview(ctx context.Context) (*models.AnalyticsOverview, error)
	StatsOverview(ctx context.Context) (*models.StatsOverview, error)
}
