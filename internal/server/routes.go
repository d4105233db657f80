package server

import (
	"net/http"

	"github.com/ternarybob/kintari/internal/metrics"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Documents
	docs := s.app.DocumentHandler
	mux.HandleFunc("POST /api/documents/upload", docs.UploadHandler)
	mux.HandleFunc("GET /api/documents", docs.ListHandler)
	mux.HandleFunc("GET /api/documents/types", docs.TypesHandler)
	mux.HandleFunc("GET /api/documents/stats", docs.StatsHandler)
	mux.HandleFunc("GET /api/documents/search", docs.SearchHandler)
	mux.HandleFunc("GET /api/documents/{id}", docs.GetHandler)
	mux.HandleFunc("DELETE /api/documents/{id}", docs.DeleteHandler)
	mux.HandleFunc("PUT /api/documents/{id}/tags", docs.UpdateTagsHandler)
	mux.HandleFunc("PUT /api/documents/{id}/category", docs.UpdateCategoryHandler)
	mux.HandleFunc("PUT /api/documents/{id}/type", docs.UpdateTypeHandler)
	mux.HandleFunc("POST /api/documents/{id}/reprocess", docs.ReprocessHandler)

	// Collections
	collections := s.app.CollectionHandler
	mux.HandleFunc("GET /api/collections", collections.ListHandler)
	mux.HandleFunc("POST /api/collections", collections.CreateHandler)
	mux.HandleFunc("GET /api/collections/{id}", collections.GetHandler)
	mux.HandleFunc("POST /api/collections/{id}/documents", collections.AddDocumentsHandler)

	// Members
	members := s.app.MemberHandler
	mux.HandleFunc("POST /api/members/import", members.ImportHandler)
	mux.HandleFunc("GET /api/members/stats", members.StatsHandler)
	mux.HandleFunc("GET /api/members", members.ListHandler)
	mux.HandleFunc("POST /api/members", members.CreateHandler)
	mux.HandleFunc("GET /api/members/{id}", members.GetHandler)
	mux.HandleFunc("PUT /api/members/{id}", members.UpdateHandler)
	mux.HandleFunc("DELETE /api/members/{id}", members.DeleteHandler)

	// Chat
	chat := s.app.ChatHandler
	mux.HandleFunc("POST /api/chat", chat.ChatHandler)
	mux.HandleFunc("GET /api/chat/context", chat.ContextHandler)
	mux.HandleFunc("POST /api/chat/export", chat.ExportHandler)

	// Analytics
	analytics := s.app.AnalyticsHandler
	mux.HandleFunc("GET /api/analytics/members", analytics.MembersHandler)
	mux.HandleFunc("GET /api/analytics/documents", analytics.DocumentsHandler)
	mux.HandleFunc("GET /api/analytics/overview", analytics.OverviewHandler)
	mux.HandleFunc("GET /api/stats/overview", analytics.StatsOverviewHandler)

	// Ops
	mux.HandleFunc("GET /api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("GET /api/version", s.app.StatusHandler.VersionHandler)
	if s.app.Config.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	return mux
}
