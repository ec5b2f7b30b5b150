package dto

import "errors"

// Custom errors
var (
	ErrNoFiles             = errors.New("at least one file is required")
	ErrUnsupportedFileType = errors.New("invalid file type. Supported: PDF, PNG, JPG, HEIC")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrNoText              = errors.New("at least one text capture is required")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// CaptureResult is the extraction outcome for one uploaded file or capture
type CaptureResult struct {
	Filename string         `json:"filename,omitempty"`
	Source   string         `json:"source"` // "ocr", "pdf_text", "qr" or "text"
	ImageKey string         `json:"image_key,omitempty"`
	Quality  CaptureQuality `json:"quality"`
	ExtractionResult
}

// CaptureQuality scores how usable one capture's text was (0-100)
type CaptureQuality struct {
	TextLength  int      `json:"text_length"`
	FieldsFound int      `json:"fields_found"`
	Score       float64  `json:"score"`
	Issues      []string `json:"issues,omitempty"`
}

// ConsistencyReport compares the captures of one submission.
// It never changes the merged values.
type ConsistencyReport struct {
	NameMatch       bool     `json:"name_match"`
	NameSimilarity  float64  `json:"name_similarity"`
	IdentifierMatch bool     `json:"identifier_match"`
	Notes           []string `json:"notes"`
}

// SubmissionResponse is returned for a multi-capture submission.
// Merged is built from Captures in the order they were uploaded.
type SubmissionResponse struct {
	SubmissionID string            `json:"submission_id"`
	DocumentType string            `json:"document_type"`
	Flags        DocumentFlags     `json:"flags"`
	Captures     []CaptureResult   `json:"captures"`
	Merged       ExtractedRecord   `json:"merged"`
	Consistency  ConsistencyReport `json:"consistency"`
	Persisted    bool              `json:"persisted"`
	ProcessedAt  string            `json:"processed_at"`
}
