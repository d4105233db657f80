package models

// QueryIntent is the wire-stable intent of a chat question
type QueryIntent string

const (
	IntentRoleCount      QueryIntent = "ROLE_COUNT"
	IntentIndustryStat   QueryIntent = "INDUSTRY_STAT"
	IntentCardStatusStat QueryIntent = "CARD_STATUS_STAT"
	IntentGenderRatio    QueryIntent = "GENDER_RATIO"
	IntentMemberLookup   QueryIntent = "MEMBER_LOOKUP"
	IntentContactLookup  QueryIntent = "CONTACT_LOOKUP"
	IntentCompanyLookup  QueryIntent = "COMPANY_LOOKUP"
	IntentEmployeeTotal  QueryIntent = "EMPLOYEE_TOTAL"
	IntentDocumentFact   QueryIntent = "DOCUMENT_FACT"
	IntentGeneric        QueryIntent = "GENERIC"
)

// IsDeterministic reports whether the intent is answered without the generative model
func (i QueryIntent) IsDeterministic() bool {
	return i != IntentGeneric
}

// Answer sources
const (
	SourceDirectQuery   = "Direct Database Query"
	SourceKnowledgeBase = "Knowledge Base + AI Analytics"
)

// Answer is the response to a chat question
type Answer struct {
	Status         string            `json:"status"`
	Query          string            `json:"query"`
	Intent         QueryIntent       `json:"intent"`
	Slots          map[string]string `json:"slots,omitempty"`
	Response       string            `json:"response"`      // Markdown
	ResponseHTML   string            `json:"response_html"` // Rendered markdown
	Source         string            `json:"source"`
	Partial        bool              `json:"partial"`
	Data           interface{}       `json:"data,omitempty"`
	MembersCount   int               `json:"members_count"`
	DocumentsCount int               `json:"documents_count"`
	ContextSize    int               `json:"context_size"`
}

// ContextBundle is the bounded context sent to the generative model for generic questions
type ContextBundle struct {
	Text           string       `json:"context"`
	Size           int          `json:"context_size"`
	Truncated      bool         `json:"truncated"`
	MembersCount   int          `json:"members_count"`
	MembersShown   int          `json:"members_shown"`
	DocumentsCount int          `json:"documents_count"`
	DocumentsShown int          `json:"documents_shown"`
	Stats          *MemberStats `json:"stats,omitempty"`
}
