package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Aashish23092/workpass-ocr/dto"
)

// Document is one normalized capture plus its classification.
// Text and UpperText are the lines joined with "\n".
type Document struct {
	Lines
	Text      string
	UpperText string
	Flags     dto.DocumentFlags
}

// NewDocument normalizes text and classifies it once for all extractors
func NewDocument(text string, hint dto.DocumentTypeHint) *Document {
	lines := NormalizeLines(text)
	doc := &Document{
		Lines:     lines,
		Text:      strings.Join(lines.Orig, "\n"),
		UpperText: strings.Join(lines.Upper, "\n"),
	}
	doc.Flags = ClassifyDocument(doc.UpperText, hint)
	return doc
}

// fieldStrategy is one rule of a fallback cascade
type fieldStrategy func(doc *Document) (string, bool)

// firstMatch runs strategies in order and returns the first success
func firstMatch(doc *Document, strategies ...fieldStrategy) (string, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	return "", false
}

// ExtractRecord runs the full extraction over one capture.
// Blank input yields auto flags and an empty record.
func ExtractRecord(text string, hint dto.DocumentTypeHint) dto.ExtractionResult {
	if strings.TrimSpace(text) == "" {
		return dto.ExtractionResult{DocumentType: dto.DocumentFlags{}.Kind()}
	}

	doc := NewDocument(text, hint)
	var rec dto.ExtractedRecord

	id, idLine, seededName := extractIdentifier(doc)
	rec.FinNumber = dto.Optional(id)
	if wp, ok := extractWorkPermitNo(doc); ok {
		rec.WorkPermitNo = dto.Optional(wp)
	}

	if name, ok := extractName(doc, idLine, seededName); ok {
		rec.WorkerName = dto.Optional(name)
	}

	extractAttributes(doc, &rec)
	assignDateRoles(doc, &rec)

	if doc.Flags.Certification {
		extractCertification(doc, &rec)
	}

	return dto.ExtractionResult{
		DocumentType: doc.Flags.Kind(),
		Flags:        doc.Flags,
		Record:       rec,
	}
}

// ---------------- shared label helpers ----------------

var (
	fieldLabelRe = regexp.MustCompile(`^(?:NAME\b|FIN\b|NRIC\b|IDENTITY CARD|ID NO\b|ID NUMBER\b|WORK PERMIT|WP NO\b|PERMIT NO\b|` +
		`DATE OF\b|DATE ISSUED\b|DOB\b|D\.O\.B|SEX\b|GENDER\b|NATIONALITY\b|CITIZENSHIP\b|RACE\b|ETHNICITY\b|` +
		`EMPLOYER|COMPANY NAME\b|ADDRESS\b|COUNTRY OF BIRTH|COUNTRY/PLACE|COUNTRY / PLACE|PLACE OF BIRTH|ISSUE DATE\b|` +
		`ISSUED\b|EXPIRY\b|EXPIRES\b|VALID\b|VALIDITY\b|OCCUPATION\b|SECTOR\b|PASSPORT\b|COURSE\b|SERIAL\b|` +
		`CERT(?:IFICATE)? NO\b|DURATION\b|BLOOD\b|TRAINING PROVIDER\b)`)
	valueTrimChars = " \t:;.,-|_=*"
	spaceRunRe     = regexp.MustCompile(`\s+`)
)

// isFieldLabel reports whether an upper-case line starts with a known field label
func isFieldLabel(upperLine string) bool {
	return fieldLabelRe.MatchString(collapseSpaces(upperLine))
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

func trimValue(s string) string {
	return strings.Trim(collapseSpaces(s), valueTrimChars)
}

// labelRegexp builds a case-insensitive "label at line start" pattern capturing the remainder.
// Every alternative in labels must end in a word character.
func labelRegexp(labels string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:` + labels + `)\b\s*[:.\-]*\s*(.*)$`)
}

// labelScan finds a line starting with the label and returns the remainder of
// that line, or the next line when the remainder is not accepted.
func labelScan(doc *Document, label *regexp.Regexp, accept func(string) bool) (string, bool) {
	for i, line := range doc.Orig {
		m := label.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v := trimValue(m[1]); accept(v) {
			return v, true
		}
		if i+1 < doc.Len() && !isFieldLabel(doc.Upper[i+1]) {
			if v := trimValue(doc.Orig[i+1]); accept(v) {
				return v, true
			}
		}
	}
	return "", false
}

// labelStrategy adapts labelScan to a cascade step
func labelStrategy(label *regexp.Regexp, accept func(string) bool) fieldStrategy {
	return func(doc *Document) (string, bool) {
		return labelScan(doc, label, accept)
	}
}

// nonTrivial accepts values with at least two letters or digits that are not labels themselves
func nonTrivial(v string) bool {
	if v == "" || isFieldLabel(strings.ToUpper(v)) {
		return false
	}
	n := 0
	for _, r := range v {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n >= 2
}
