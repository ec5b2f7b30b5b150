package dto

import "strings"

// DocumentTypeHint is the caller supplied document type
type DocumentTypeHint string

const (
	HintAuto          DocumentTypeHint = "auto"
	HintWorkPermit    DocumentTypeHint = "work_permit"
	HintCertification DocumentTypeHint = "certification"
)

// NoExpiry is stored in ExpiryDate when the document states it never expires.
const NoExpiry = "NO_EXPIRY"

// DocumentFlags describes which known layout families a capture resembles.
// The flags are independent; a capture may match several.
type DocumentFlags struct {
	WorkPermit    bool `json:"is_work_permit"`
	IdentityCard  bool `json:"is_identity_card"`
	Certification bool `json:"is_certification"`
}

// Kind returns the primary document kind used for routing to persistence.
func (f DocumentFlags) Kind() string {
	switch {
	case f.Certification:
		return "certification"
	case f.WorkPermit:
		return "work_permit"
	case f.IdentityCard:
		return "identity_card"
	}
	return "unknown"
}

// ExtractedRecord is the structured output of one capture.
// A nil field means "not found".
type ExtractedRecord struct {
	FinNumber      *string `json:"fin_number"`
	WorkPermitNo   *string `json:"work_permit_no"`
	WorkerName     *string `json:"worker_name"`
	DateOfBirth    *string `json:"date_of_birth"`
	Nationality    *string `json:"nationality"`
	Sex            *string `json:"sex"`
	Race           *string `json:"race"`
	Address        *string `json:"address"`
	CountryOfBirth *string `json:"country_of_birth"`
	EmployerName   *string `json:"employer_name"`
	CourseTitle    *string `json:"course_title"`
	CourseProvider *string `json:"course_provider"`
	CertSerialNo   *string `json:"cert_serial_no"`
	CourseDuration *string `json:"course_duration"`
	IssueDate      *string `json:"issue_date"`
	ExpiryDate     *string `json:"expiry_date"`
}

// RecordField pairs a JSON field name with an accessor into ExtractedRecord.
type RecordField struct {
	Name string
	Ptr  func(r *ExtractedRecord) **string
}

// RecordFields lists every ExtractedRecord field in output order.
var RecordFields = []RecordField{
	{"fin_number", func(r *ExtractedRecord) **string { return &r.FinNumber }},
	{"work_permit_no", func(r *ExtractedRecord) **string { return &r.WorkPermitNo }},
	{"worker_name", func(r *ExtractedRecord) **string { return &r.WorkerName }},
	{"date_of_birth", func(r *ExtractedRecord) **string { return &r.DateOfBirth }},
	{"nationality", func(r *ExtractedRecord) **string { return &r.Nationality }},
	{"sex", func(r *ExtractedRecord) **string { return &r.Sex }},
	{"race", func(r *ExtractedRecord) **string { return &r.Race }},
	{"address", func(r *ExtractedRecord) **string { return &r.Address }},
	{"country_of_birth", func(r *ExtractedRecord) **string { return &r.CountryOfBirth }},
	{"employer_name", func(r *ExtractedRecord) **string { return &r.EmployerName }},
	{"course_title", func(r *ExtractedRecord) **string { return &r.CourseTitle }},
	{"course_provider", func(r *ExtractedRecord) **string { return &r.CourseProvider }},
	{"cert_serial_no", func(r *ExtractedRecord) **string { return &r.CertSerialNo }},
	{"course_duration", func(r *ExtractedRecord) **string { return &r.CourseDuration }},
	{"issue_date", func(r *ExtractedRecord) **string { return &r.IssueDate }},
	{"expiry_date", func(r *ExtractedRecord) **string { return &r.ExpiryDate }},
}

// Value returns the field's value or "" when unset.
func (f RecordField) Value(r *ExtractedRecord) string {
	if p := *f.Ptr(r); p != nil {
		return *p
	}
	return ""
}

// Set stores v trimmed, or nil when v is blank.
func (f RecordField) Set(r *ExtractedRecord, v string) {
	*f.Ptr(r) = Optional(v)
}

// Optional returns a pointer to the trimmed value, or nil when it is blank.
func Optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// IsEmpty reports whether no field is set.
func (r *ExtractedRecord) IsEmpty() bool {
	for _, f := range RecordFields {
		if *f.Ptr(r) != nil {
			return false
		}
	}
	return true
}

// ExtractionResult is the engine output for a single capture.
type ExtractionResult struct {
	DocumentType string          `json:"document_type"`
	Flags        DocumentFlags   `json:"flags"`
	Record       ExtractedRecord `json:"record"`
}
