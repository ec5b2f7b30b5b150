package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRecordsXLSX(t *testing.T) {
	updated := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	data, err := RecordsXLSX(
		Sheet{Name: "Workers", Rows: []Row{{
			Key:       "G1234567N",
			UpdatedAt: updated,
			Record: dto.ExtractedRecord{
				FinNumber:  dto.Optional("G1234567N"),
				WorkerName: dto.Optional("RAHMAN MOHAMMED"),
				ExpiryDate: dto.Optional(dto.NoExpiry),
			},
		}}},
		Sheet{Name: "Certifications"},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Workers", "Certifications"}, f.GetSheetList())

	rows, err := f.GetRows("Workers")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "key", rows[0][0])
	assert.Equal(t, "fin_number", rows[0][1])
	assert.Equal(t, "updated_at", rows[0][len(rows[0])-1])
	assert.Equal(t, "G1234567N", rows[1][0])
	assert.Equal(t, "RAHMAN MOHAMMED", rows[1][3])
	assert.Equal(t, dto.NoExpiry, rows[1][16])
	assert.Equal(t, "2024-03-01T08:00:00Z", rows[1][17])

	certRows, err := f.GetRows("Certifications")
	require.NoError(t, err)
	assert.Len(t, certRows, 1)
}
