package models

import "time"

// DocumentType is the wire-stable classification label of a document
type DocumentType string

const (
	DocumentTypeOrgCharter   DocumentType = "ORG_CHARTER"  // Anggaran Dasar (AD)
	DocumentTypeOrgBylaws    DocumentType = "ORG_BYLAWS"   // Anggaran Rumah Tangga (ART)
	DocumentTypeOrgPolicy    DocumentType = "ORG_POLICY"   // Peraturan Organisasi (PO)
	DocumentTypeOrgDecision  DocumentType = "ORG_DECISION" // Surat Keputusan (SK)
	DocumentTypeOrgOther     DocumentType = "ORG_OTHER"    // Other organisation documents
	DocumentTypeContract     DocumentType = "CONTRACT"
	DocumentTypeReport       DocumentType = "REPORT"
	DocumentTypeProposal     DocumentType = "PROPOSAL"
	DocumentTypePresentation DocumentType = "PRESENTATION"
	DocumentTypeRegulation   DocumentType = "REGULATION"
	DocumentTypeManual       DocumentType = "MANUAL"
	DocumentTypeOther        DocumentType = "OTHER"
)

// DocumentTypes lists every label in display order
var DocumentTypes = []DocumentType{
	DocumentTypeOrgCharter,
	DocumentTypeOrgBylaws,
	DocumentTypeOrgPolicy,
	DocumentTypeOrgDecision,
	DocumentTypeOrgOther,
	DocumentTypeContract,
	DocumentTypeReport,
	DocumentTypeProposal,
	DocumentTypePresentation,
	DocumentTypeRegulation,
	DocumentTypeManual,
	DocumentTypeOther,
}

// DocumentTypeInfo is the display information served with the types list
type DocumentTypeInfo struct {
	Type        DocumentType `json:"type"`
	Code        string       `json:"code,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
}

var documentTypeInfo = map[DocumentType]DocumentTypeInfo{
	DocumentTypeOrgCharter:   {Code: "AD", Name: "Anggaran Dasar", Description: "Anggaran Dasar organisasi"},
	DocumentTypeOrgBylaws:    {Code: "ART", Name: "Anggaran Rumah Tangga", Description: "Anggaran Rumah Tangga organisasi"},
	DocumentTypeOrgPolicy:    {Code: "PO", Name: "Peraturan Organisasi", Description: "Peraturan Organisasi"},
	DocumentTypeOrgDecision:  {Code: "SK", Name: "Surat Keputusan", Description: "Surat Keputusan pengurus"},
	DocumentTypeOrgOther:     {Code: "HIPMI", Name: "Dokumen Organisasi", Description: "Dokumen organisasi lainnya"},
	DocumentTypeContract:     {Name: "Kontrak/Perjanjian", Description: "Dokumen kontrak dan perjanjian"},
	DocumentTypeReport:       {Name: "Laporan", Description: "Laporan kegiatan, keuangan, atau tahunan"},
	DocumentTypeProposal:     {Name: "Proposal", Description: "Proposal kegiatan atau bisnis"},
	DocumentTypePresentation: {Name: "Presentasi", Description: "Materi presentasi"},
	DocumentTypeRegulation:   {Name: "Peraturan/Kebijakan", Description: "Peraturan dan kebijakan"},
	DocumentTypeManual:       {Name: "Manual/Panduan", Description: "Panduan dan manual"},
	DocumentTypeOther:        {Name: "Dokumen Lainnya", Description: "Dokumen yang tidak terklasifikasi"},
}

// Info returns display information for the label
func (t DocumentType) Info() DocumentTypeInfo {
	info, ok := documentTypeInfo[t]
	if !ok {
		info = documentTypeInfo[DocumentTypeOther]
		t = DocumentTypeOther
	}
	info.Type = t
	return info
}

// IsValid reports whether t is one of the known labels
func (t DocumentType) IsValid() bool {
	_, ok := documentTypeInfo[t]
	return ok
}

// PageText is the extracted text of a single page (1-indexed)
type PageText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Table is a detected table on a page. Rows are ordered top to bottom, cells left to right.
type Table struct {
	Page int        `json:"page"`
	Rows [][]string `json:"rows"`
}

// PDFMetadata holds values from the document information dictionary
type PDFMetadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
}

// ExtractedContent is the extractor output for one document.
// PageCount always equals len(Pages) and FullText is the page texts joined by a blank line.
type ExtractedContent struct {
	Pages     []PageText  `json:"pages"`
	FullText  string      `json:"full_text"`
	Tables    []Table     `json:"tables"`
	PageCount int         `json:"page_count"`
	ByteSize  int64       `json:"byte_size"`
	Metadata  PDFMetadata `json:"metadata"`
}

// EntityBundle holds deduplicated entities per kind, each sorted for stable output
type EntityBundle struct {
	Emails  []string `json:"emails"`
	Phones  []string `json:"phones"`
	Dates   []string `json:"dates"`
	URLs    []string `json:"urls"`
	Numbers []string `json:"numbers,omitempty"` // Unclaimed numeric tokens, capped
}

// Keyword is a salient term and its frequency
type Keyword struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// DocumentRecord is a persisted document
type DocumentRecord struct {
	// Identity
	ID          string `json:"id"` // doc_{uuid}
	Filename    string `json:"filename"`
	StoragePath string `json:"storage_path"` // Blob store key
	FileSize    int64  `json:"file_size"`

	// Extracted content
	PageCount    int          `json:"page_count"`
	FullText     string       `json:"full_text"`
	Summary      string       `json:"summary"`
	Entities     EntityBundle `json:"extracted_entities"`
	Keywords     []Keyword    `json:"keywords"`
	Tables       []Table      `json:"tables_data"`
	PDFMetadata  PDFMetadata  `json:"pdf_metadata"`
	DocumentType DocumentType `json:"document_type"`

	// User-assigned
	Category string   `json:"category"`
	Tags     []string `json:"tags"`

	// Processing state
	Processed     bool       `json:"processed"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`

	// Lowercase folded filename + leading text, used for substring search
	SearchIndex string `json:"-"`

	// Timestamps
	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentCollection groups documents under a name
type DocumentCollection struct {
	ID          string    `json:"id"` // col_{uuid}
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DocumentIDs []string  `json:"document_ids"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentStats aggregates the document store
type DocumentStats struct {
	Total             int            `json:"total"`
	Processed         int            `json:"processed"`
	Unprocessed       int            `json:"unprocessed"`
	ByType            map[string]int `json:"by_type"`
	ByCategory        map[string]int `json:"by_category"`
	TotalStorageBytes int64          `json:"total_storage_bytes"`
	TotalStorageMB    float64        `json:"total_storage_mb"`
}
