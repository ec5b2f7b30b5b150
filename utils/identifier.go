package utils

import (
	"regexp"
	"strings"
)

// identifierPattern is the FIN/NRIC shape: prefix letter, seven digits, check letter
const identifierPattern = `[STFGM]\d{7}[A-Z]`

var (
	identifierRe = regexp.MustCompile(`\b` + identifierPattern + `\b`)

	identityCardNoRe = regexp.MustCompile(`IDENTITY\s*CARD\s*(?:NO|NUMBER)\b\.?\s*[:\-]?\s*(` + identifierPattern + `)\b`)
	nricNoRe         = regexp.MustCompile(`NRIC\s*NO\b\.?\s*[:\-]?\s*(` + identifierPattern + `)\b`)
	finLabelRe       = regexp.MustCompile(`\b(?:FIN(?:\s*NO)?|ID\s*NO|ID\s*NUMBER)\b\.?\s*[:\-]?\s*(` + identifierPattern + `)\b`)
	nameAdjacentRe   = regexp.MustCompile(`([A-Z][A-Z'./\- ]*[A-Z.])\s*\(\s*(` + identifierPattern + `)\s*\)`)

	workPermitLabelRe = regexp.MustCompile(`(?:WORK\s*PERMIT\s*(?:NO|NUMBER)|\bWP\s*NO|\bPERMIT\s*(?:NO|NUMBER))\b\.?`)
	leadingDigitsRe   = regexp.MustCompile(`^[\s:.\-#]*(\d(?: ?\d){7,8})\b`)
)

// extractIdentifier resolves the FIN/NRIC through the labelled tiers, then the
// name-adjacent form, then any bare token. It returns the identifier, the index
// of the first line containing it (-1 if absent) and a name seeded by the
// name-adjacent tier.
func extractIdentifier(doc *Document) (id string, line int, seededName string) {
	for _, re := range []*regexp.Regexp{identityCardNoRe, nricNoRe, finLabelRe} {
		if m := re.FindStringSubmatch(doc.UpperText); m != nil {
			id = m[1]
			break
		}
	}

	if id == "" {
		for _, l := range doc.Upper {
			m := nameAdjacentRe.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			id = m[2]
			if name := cleanName(m[1]); isValidName(name) {
				seededName = name
			}
			break
		}
	}

	if id == "" {
		id = identifierRe.FindString(doc.UpperText)
	}
	if id == "" {
		return "", -1, ""
	}

	line = -1
	for i, l := range doc.Upper {
		if strings.Contains(l, id) {
			line = i
			break
		}
	}
	return id, line, seededName
}

// extractWorkPermitNo reads the 8-9 digit permit serial printed next to (or
// below) a permit number label. Spaces inside the number are dropped.
func extractWorkPermitNo(doc *Document) (string, bool) {
	for i, l := range doc.Upper {
		loc := workPermitLabelRe.FindStringIndex(l)
		if loc == nil {
			continue
		}
		if wp, ok := permitDigits(l[loc[1]:]); ok {
			return wp, true
		}
		if i+1 < doc.Len() {
			if wp, ok := permitDigits(doc.Upper[i+1]); ok {
				return wp, true
			}
		}
	}
	return "", false
}

func permitDigits(s string) (string, bool) {
	m := leadingDigitsRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	digits := strings.ReplaceAll(m[1], " ", "")
	if len(digits) < 8 || len(digits) > 9 {
		return "", false
	}
	return digits, true
}
