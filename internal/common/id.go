package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewMemberID generates a unique member ID with the "mbr_" prefix
func NewMemberID() string {
	return "mbr_" + uuid.New().String()
}

// NewCollectionID generates a unique collection ID with the "col_" prefix
func NewCollectionID() string {
	return "col_" + uuid.New().String()
}
