package models

import "time"

// CountItem is a labelled count used by chart-style analytics
type CountItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MemberAnalytics summarises the roster for the dashboard
type MemberAnalytics struct {
	Total           int            `json:"total"`
	AgeRanges       []CountItem    `json:"age_ranges"`
	ByGender        map[string]int `json:"by_gender"`
	ByRole          []CountItem    `json:"by_role"`
	ByIndustry      []CountItem    `json:"by_industry"`
	ByCardStatus    map[string]int `json:"by_card_status"`
	WithCompany     int            `json:"with_company"`
	WithoutCompany  int            `json:"without_company"`
	UniqueCompanies int            `json:"unique_companies"`
	EmployeeTotal   int            `json:"employee_total"`
}

// DocumentAnalytics summarises the document store for the dashboard
type DocumentAnalytics struct {
	Total         int            `json:"total"`
	Processed     int            `json:"processed"`
	ByType        map[string]int `json:"by_type"`
	ByCategory    map[string]int `json:"by_category"`
	TotalPages    int            `json:"total_pages"`
	AveragePages  float64        `json:"average_pages"`
	TotalSizeMB   float64        `json:"total_size_mb"`
	AverageSizeMB float64        `json:"average_size_mb"`
	TopKeywords   []Keyword      `json:"top_keywords"`
	RecentUploads int            `json:"recent_uploads"` // Last 30 days
}

// AnalyticsOverview combines member and document analytics with a narrative summary
type AnalyticsOverview struct {
	Members     *MemberAnalytics   `json:"members"`
	Documents   *DocumentAnalytics `json:"documents"`
	Summary     string             `json:"summary"`
	AIGenerated bool               `json:"ai_generated"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// StatsOverview holds the dashboard counters
type StatsOverview struct {
	TotalDokumen       int        `json:"total_dokumen"`
	ProcessedDocuments int        `json:"processed_documents"`
	TotalAnggota       int        `json:"total_anggota"`
	TotalStorageMB     float64    `json:"total_storage_mb"`
	LatestDocument     string     `json:"latest_document,omitempty"`
	LastUpdated        *time.Time `json:"last_updated,omitempty"`
}
