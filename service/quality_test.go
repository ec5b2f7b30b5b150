package service

import (
	"strings"
	"testing"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/Aashish23092/workpass-ocr/utils"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateCapture(t *testing.T) {
	rec := utils.ExtractRecord(frontText, dto.HintAuto).Record
	q := evaluateCapture(frontText, rec)

	assert.Equal(t, 5, q.FieldsFound)
	assert.Equal(t, 57.5, q.Score)
	assert.Empty(t, q.Issues)

	empty := evaluateCapture("  ", dto.ExtractedRecord{})
	assert.Zero(t, empty.Score)
	assert.Equal(t, []string{"short_text", "no_identifier", "low_quality_capture"}, empty.Issues)

	long := strings.Repeat("x", 600)
	assert.Equal(t, 40.0, evaluateCapture(long, dto.ExtractedRecord{}).Score)
}
