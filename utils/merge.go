package utils

import "github.com/Aashish23092/workpass-ocr/dto"

// MergeRecords combines the records of one submission field by field. For each
// field the first non-empty value in slice order wins, so callers must pass
// captures in a meaningful order (front before back, page 1 before page 2).
func MergeRecords(records []dto.ExtractedRecord) dto.ExtractedRecord {
	var merged dto.ExtractedRecord
	for _, f := range dto.RecordFields {
		for i := range records {
			if v := f.Value(&records[i]); v != "" {
				f.Set(&merged, v)
				break
			}
		}
	}
	return merged
}

// MergeFlags ORs the flags of every capture
func MergeFlags(results []dto.ExtractionResult) dto.DocumentFlags {
	var flags dto.DocumentFlags
	for _, r := range results {
		flags.WorkPermit = flags.WorkPermit || r.Flags.WorkPermit
		flags.IdentityCard = flags.IdentityCard || r.Flags.IdentityCard
		flags.Certification = flags.Certification || r.Flags.Certification
	}
	return flags
}
