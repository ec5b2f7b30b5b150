package dto

import (
	"strings"
)

// Upload is one file of a submission, already read into memory
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

// Validate validates the upload against the supported types and size limit
func (u *Upload) Validate(maxSize int64) error {
	if len(u.Data) == 0 {
		return ErrNoFiles
	}
	if maxSize > 0 && int64(len(u.Data)) > maxSize {
		return ErrFileTooLarge
	}

	mimeType := strings.ToLower(u.MimeType)
	validTypes := []string{"application/pdf", "image/png", "image/jpeg", "image/jpg", "image/heic", "image/heif"}
	for _, valid := range validTypes {
		if strings.Contains(mimeType, valid) {
			return nil
		}
	}
	return ErrUnsupportedFileType
}

// ParseTextRequest asks the engine to extract from already recognised text.
// Texts are merged in the order given.
type ParseTextRequest struct {
	Texts   []string `json:"texts"`
	DocType string   `json:"doc_type"`
}

// Validate performs basic validation on the request
func (r *ParseTextRequest) Validate() error {
	for _, t := range r.Texts {
		if strings.TrimSpace(t) != "" {
			return nil
		}
	}
	return ErrNoText
}
