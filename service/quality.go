package service

import (
	"strings"

	"github.com/Aashish23092/workpass-ocr/dto"
)

// evaluateCapture scores a capture from 0-100 based on text length and how
// many record fields the engine could fill from it
func evaluateCapture(text string, rec dto.ExtractedRecord) dto.CaptureQuality {
	q := dto.CaptureQuality{TextLength: len(strings.TrimSpace(text))}

	// Length score (max 40 points)
	switch {
	case q.TextLength > 500:
		q.Score += 40
	case q.TextLength > 100:
		q.Score += 20
	case q.TextLength > 20:
		q.Score += 10
	default:
		q.Issues = append(q.Issues, "short_text")
	}

	// Field score (max 60 points)
	for _, f := range dto.RecordFields {
		if f.Value(&rec) != "" {
			q.FieldsFound++
		}
	}
	q.Score += min(60, float64(q.FieldsFound)*7.5)

	if rec.FinNumber == nil {
		q.Issues = append(q.Issues, "no_identifier")
	}
	if q.Score < 40 {
		q.Issues = append(q.Issues, "low_quality_capture")
	}
	return q
}
