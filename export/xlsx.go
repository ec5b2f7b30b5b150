package export

import (
	"fmt"
	"time"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/xuri/excelize/v2"
)

// Row is one exported record with the key it is stored under
type Row struct {
	Key       string
	Record    dto.ExtractedRecord
	UpdatedAt time.Time
}

// Sheet is a named block of rows
type Sheet struct {
	Name string
	Rows []Row
}

// RecordsXLSX writes each sheet with a header row taken from dto.RecordFields.
// The first sheet is the active one.
func RecordsXLSX(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return nil, err
		}
	}
	if len(sheets) > 0 {
		if index, _ := f.GetSheetIndex(sheets[0].Name); index >= 0 {
			f.SetActiveSheet(index)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s Sheet) error {
	headers := []string{"key"}
	for _, field := range dto.RecordFields {
		headers = append(headers, field.Name)
	}
	headers = append(headers, "updated_at")

	if err := f.SetSheetRow(s.Name, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range s.Rows {
		values := make([]any, 0, len(headers))
		values = append(values, r.Key)
		for _, field := range dto.RecordFields {
			values = append(values, field.Value(&r.Record))
		}
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.UTC().Format(time.RFC3339)
		}
		values = append(values, updated)

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(s.Name, "A", last, 18)
	_ = f.SetColWidth(s.Name, "D", "D", 32) // worker name
	_ = f.SetColWidth(s.Name, "I", "I", 48) // address
	_ = f.SetColWidth(s.Name, "K", "M", 36) // employer, course title, provider
	return nil
}
