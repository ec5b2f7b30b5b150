package dto

import "time"

// WorkerRecord is the stored identity/permit record of one worker.
// FIN is the upper-cased identifier and the storage key.
type WorkerRecord struct {
	FIN       string          `json:"fin"`
	Record    ExtractedRecord `json:"record"`
	ImageKeys []string        `json:"image_keys,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CertificationRecord is a stored training certificate linked to a worker by FIN
type CertificationRecord struct {
	ID        string          `json:"id"`
	FIN       string          `json:"fin"`
	Record    ExtractedRecord `json:"record"`
	ImageKeys []string        `json:"image_keys,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// WorkerProfile is a worker together with its certifications
type WorkerProfile struct {
	Worker         *WorkerRecord         `json:"worker"`
	Certifications []CertificationRecord `json:"certifications"`
}
