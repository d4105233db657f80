package common

import "errors"

// Extraction errors. These are absorbed by the record builder and stored as the
// failure reason of an unprocessed document.
var (
	// ErrUnsupportedFormat indicates the bytes are not a readable PDF.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionTimeout indicates extraction exceeded its deadline and was abandoned.
	ErrExtractionTimeout = errors.New("extraction timeout")

	// ErrExtractionPartialFailure indicates some pages could not be read.
	ErrExtractionPartialFailure = errors.New("extraction partial failure")
)

// Store errors surface as request-level failures.
var (
	ErrRecordNotFound = errors.New("record not found")

	// ErrImportSchemaMismatch rejects a whole CSV import.
	ErrImportSchemaMismatch = errors.New("import schema mismatch")

	ErrBlobNotFound = errors.New("blob not found")

	// ErrInvalidUpload covers wrong extension, size bounds and missing files.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrInvalidInput rejects a well-formed request with unusable values.
	ErrInvalidInput = errors.New("invalid input")
)

// Generative model errors. The composer turns all of them into a partial answer.
var (
	ErrExternalModelUnavailable = errors.New("external model unavailable")
	ErrModelTimeout             = errors.New("model timeout")
	ErrModelQuotaExceeded       = errors.New("model quota exceeded")
	ErrModelMalformed           = errors.New("malformed model response")
)
