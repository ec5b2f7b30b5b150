package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Aashish23092/workpass-ocr/dto"
)

var (
	employerLabelRe       = labelRegexp(`NAME\s+OF\s+EMPLOYER|EMPLOYER'?S?\s*NAME|EMPLOYER|COMPANY\s*NAME`)
	nationalityLabelRe    = labelRegexp(`NATIONALITY|CITIZENSHIP`)
	sexLabelRe            = labelRegexp(`SEX|GENDER`)
	raceLabelRe           = labelRegexp(`RACE|ETHNICITY`)
	addressLabelRe        = labelRegexp(`(?:RESIDENTIAL\s+)?ADDRESS`)
	countryOfBirthLabelRe = labelRegexp(`COUNTRY\s*/\s*PLACE\s+OF\s+BIRTH|COUNTRY\s+OF\s+BIRTH|PLACE\s+OF\s+BIRTH|BIRTH\s*PLACE`)

	// a later label printed on the same line ends the current value
	inlineLabelRe = regexp.MustCompile(`(?i)\s+(?:SEX|GENDER|RACE|NATIONALITY|CITIZENSHIP|DATE\s+OF|DOB|COUNTRY\s+OF|PLACE\s+OF|EMPLOYER|OCCUPATION|SECTOR|FIN|NRIC|WP\s+NO|WORK\s+PERMIT)\b`)

	companySuffixRe = regexp.MustCompile(`(?i)\b([A-Z0-9][A-Z0-9&.,'()\- ]*?\s(?:PTE\.?\s*LTD|PRIVATE\s+LIMITED|SDN\.?\s*BHD|LLP|LIMITED|LTD))\b\.?`)
	sexWordRe       = regexp.MustCompile(`\b(FEMALE|MALE)\b`)
	postalRe        = regexp.MustCompile(`(?i)\bSINGAPORE\s*\(?\s*\d{6}\s*\)?|\bS\s*\(\s*\d{6}\s*\)`)
	unitNoRe        = regexp.MustCompile(`#\d{1,3}\s*-\s*\d{1,5}`)
	addressNoiseRe  = regexp.MustCompile(`^[^\p{L}\p{N}#]+`)
	commaRe         = regexp.MustCompile(`\s*,\s*`)
)

// extractAttributes fills employer, nationality, sex, race, address and country of birth
func extractAttributes(doc *Document, rec *dto.ExtractedRecord) {
	if v, ok := firstMatch(doc, labelStrategy(employerLabelRe, acceptCompany), employerFromSuffix); ok {
		rec.EmployerName = dto.Optional(cutAtInlineLabel(v))
	}
	if v, ok := firstMatch(doc, labelStrategy(nationalityLabelRe, acceptWord), nationalityFromVocabulary); ok {
		rec.Nationality = dto.Optional(strings.ToUpper(wordValue(v)))
	}
	if v, ok := firstMatch(doc, sexFromLabel, sexFromWord); ok {
		rec.Sex = dto.Optional(v)
	}
	if v, ok := firstMatch(doc, labelStrategy(raceLabelRe, acceptWord), raceFromVocabulary); ok {
		rec.Race = dto.Optional(strings.ToUpper(wordValue(v)))
	}
	if doc.Flags.IdentityCard {
		if v, ok := firstMatch(doc, addressFromLabel, addressFromStreetLines); ok {
			rec.Address = dto.Optional(v)
		}
	}
	if v, ok := labelScan(doc, countryOfBirthLabelRe, acceptWord); ok {
		rec.CountryOfBirth = dto.Optional(wordValue(v))
	}
}

// cutAtInlineLabel drops anything from the next label on the same line
func cutAtInlineLabel(v string) string {
	if loc := inlineLabelRe.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	return trimValue(v)
}

// wordValue keeps letters and spaces only ("INDIAN", "SRI LANKAN")
func wordValue(v string) string {
	v = cutAtInlineLabel(v)
	v = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, v)
	return collapseSpaces(v)
}

func acceptWord(v string) bool {
	return nonTrivial(wordValue(v)) && !identifierRe.MatchString(strings.ToUpper(v))
}

func acceptCompany(v string) bool {
	v = cutAtInlineLabel(v)
	return nonTrivial(v) && !identifierRe.MatchString(strings.ToUpper(v)) && !pureNumberRe.MatchString(v)
}

// ---------------- employer ----------------

// employerFromSuffix finds "<name> PTE LTD" style entities. Certificates
// print the training provider this way, so they are left to the provider rules.
func employerFromSuffix(doc *Document) (string, bool) {
	if doc.Flags.Certification && !doc.Flags.WorkPermit {
		return "", false
	}
	for _, line := range doc.Orig {
		if m := companySuffixRe.FindStringSubmatch(line); m != nil {
			return trimValue(m[1]), true
		}
	}
	return "", false
}

// ---------------- nationality / race ----------------

func nationalityFromVocabulary(doc *Document) (string, bool) {
	return vocabularyScan(doc, nationalityVocab, raceLabelRe)
}

func raceFromVocabulary(doc *Document) (string, bool) {
	return vocabularyScan(doc, raceVocab, nationalityLabelRe)
}

// vocabularyScan returns the first vocabulary entry in document order,
// ignoring lines that carry the other field's label and the value line printed
// below a bare one.
func vocabularyScan(doc *Document, vocab, skipLabel *regexp.Regexp) (string, bool) {
	skipNext := false
	for i, upper := range doc.Upper {
		if m := skipLabel.FindStringSubmatch(doc.Orig[i]); m != nil {
			skipNext = trimValue(m[1]) == ""
			continue
		}
		if skipNext {
			skipNext = false
			continue
		}
		if m := vocab.FindString(upper); m != "" {
			return collapseSpaces(m), true
		}
	}
	return "", false
}

// ---------------- sex ----------------

// normalizeSex maps MALE/M and FEMALE/F to a single letter code
func normalizeSex(v string) string {
	fields := strings.Fields(strings.ToUpper(wordValue(v)))
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "M", "MALE":
		return "M"
	case "F", "FEMALE":
		return "F"
	}
	return ""
}

func sexFromLabel(doc *Document) (string, bool) {
	v, ok := labelScan(doc, sexLabelRe, func(v string) bool { return normalizeSex(v) != "" })
	if !ok {
		return "", false
	}
	return normalizeSex(v), true
}

func sexFromWord(doc *Document) (string, bool) {
	if m := sexWordRe.FindString(doc.UpperText); m != "" {
		return normalizeSex(m), true
	}
	return "", false
}

// ---------------- address ----------------

// addressFromLabel reads the ADDRESS block: the label remainder plus following
// lines up to the next label or the postal code line.
func addressFromLabel(doc *Document) (string, bool) {
	for i, line := range doc.Orig {
		m := addressLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		var parts []string
		if cl := cleanAddressLine(m[1]); cl != "" {
			parts = append(parts, cl)
		}
		if !postalRe.MatchString(m[1]) {
			for j := i + 1; j < doc.Len() && len(parts) < 5; j++ {
				if isFieldLabel(doc.Upper[j]) {
					break
				}
				if cl := cleanAddressLine(doc.Orig[j]); cl != "" {
					parts = append(parts, cl)
				}
				if postalRe.MatchString(doc.Orig[j]) {
					break
				}
			}
		}
		if len(parts) > 0 {
			return joinAddress(parts), true
		}
	}
	return "", false
}

// addressFromStreetLines joins the first run of contiguous street/block/postal lines
func addressFromStreetLines(doc *Document) (string, bool) {
	var parts []string
	for i, upper := range doc.Upper {
		if isAddressLine(upper) {
			if cl := cleanAddressLine(doc.Orig[i]); cl != "" {
				parts = append(parts, cl)
				continue
			}
		}
		if len(parts) > 0 {
			break
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return joinAddress(parts), true
}

func isAddressLine(upper string) bool {
	if isFieldLabel(upper) || identifierRe.MatchString(upper) {
		return false
	}
	return postalRe.MatchString(upper) || unitNoRe.MatchString(upper) || streetWords.containsAny(upper)
}

// cleanAddressLine trims leading noise and compresses spaces.
// It is intentionally permissive because OCR address lines are noisy.
func cleanAddressLine(line string) string {
	line = addressNoiseRe.ReplaceAllString(line, "")
	line = collapseSpaces(line)
	line = commaRe.ReplaceAllString(line, ", ")
	line = strings.Trim(line, " ,")

	letterOrDigit := 0
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letterOrDigit++
		}
	}
	if letterOrDigit < 3 {
		return ""
	}
	return line
}

func joinAddress(parts []string) string {
	seen := make(map[string]bool)
	final := make([]string, 0, len(parts))
	for _, p := range parts {
		if !seen[p] {
			seen[p] = true
			final = append(final, p)
		}
	}
	return strings.Join(final, ", ")
}
