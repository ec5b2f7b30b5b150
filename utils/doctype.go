package utils

import (
	"strings"

	"github.com/Aashish23092/workpass-ocr/dto"
)

var (
	workPermitKeywords = []string{
		"WORK PERMIT", "EMPLOYMENT OF FOREIGN MANPOWER", "FOREIGN WORKER", "MINISTRY OF MANPOWER",
	}
	identityCardKeywords = []string{
		"IDENTITY CARD", "REPUBLIC OF ", "NRIC NO",
	}
	certificationKeywords = []string{
		"CERTIFICATE", "TRAINING", "COURSE DATE", "COURSE TITLE", "SERIAL NUMBER", "SERIAL NO",
		"STATEMENT OF ATTAINMENT", "ACCREDITED TRAINING PROVIDER", "THIS IS TO CERTIFY",
		"HAS SUCCESSFULLY COMPLETED",
	}
)

// ParseHint maps a caller supplied string to a hint; anything unknown is auto
func ParseHint(s string) dto.DocumentTypeHint {
	switch dto.DocumentTypeHint(strings.ToLower(strings.TrimSpace(s))) {
	case dto.HintWorkPermit:
		return dto.HintWorkPermit
	case dto.HintCertification:
		return dto.HintCertification
	}
	return dto.HintAuto
}

// ClassifyDocument computes the document flags from the upper-cased text.
// A non-auto hint forces its flag on.
func ClassifyDocument(upperText string, hint dto.DocumentTypeHint) dto.DocumentFlags {
	// OCR splits phrases across spaces and lines unpredictably
	upperText = strings.Join(strings.Fields(upperText), " ")

	flags := dto.DocumentFlags{
		WorkPermit:    countKeywordMatches(upperText, workPermitKeywords) > 0,
		IdentityCard:  countKeywordMatches(upperText, identityCardKeywords) > 0,
		Certification: countKeywordMatches(upperText, certificationKeywords) > 0,
	}

	switch hint {
	case dto.HintWorkPermit:
		flags.WorkPermit = true
	case dto.HintCertification:
		flags.Certification = true
	}
	return flags
}

func countKeywordMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}
