package utils

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/workpass-ocr/dto"
)

var (
	courseTitleLabelRe = labelRegexp(`COURSE\s+TITLE|COURSE\s+NAME|TITLE\s+OF\s+COURSE|PROGRAMME\s+TITLE`)
	bareTitleLabelRe   = regexp.MustCompile(`(?i)^\s*(?:COURSE\s+TITLE|COURSE\s+NAME|TITLE\s+OF\s+COURSE)\s*[:.\-]*\s*$`)
	completedRe        = regexp.MustCompile(`(?i)\bHAS\s+(?:SUCCESSFULLY\s+)?(?:COMPLETED|ATTENDED)\b(.*)$`)
	headerLineRe       = regexp.MustCompile(`^(?:CERTIFICATE|STATEMENT)(?:\s+OF\s+[A-Z]+)?$`)

	providerLabelRe   = labelRegexp(`TRAINING\s+PROVIDER|COURSE\s+PROVIDER|PROVIDER|CONDUCTED\s+BY|ORGANI[SZ]ED\s+BY|ISSUED\s+BY`)
	accreditedRe      = regexp.MustCompile(`(?i)\b(?:IS\s+)?(?:AN\s+)?ACCREDITED\s+TRAINING\s+PROVIDER\b`)
	serialLabelRe     = labelRegexp(`SERIAL\s*(?:NO|NUMBER)|CERT(?:IFICATE)?\s*(?:SERIAL\s*)?(?:NO|NUMBER)|S/N|REF(?:ERENCE)?\s*NO`)
	serialValueRe     = regexp.MustCompile(`[A-Z0-9][A-Z0-9\-/]*\d[A-Z0-9\-/]*`)
	serialPatternRe   = regexp.MustCompile(`\b[A-Z]{1,5}[\-/]?\d{4,}(?:[\-/][A-Z0-9]+)*\b`)
	durationLabelRe   = labelRegexp(`COURSE\s+DURATION|DURATION|TRAINING\s+HOURS|TOTAL\s+HOURS|NO\.?\s+OF\s+HOURS`)
	durationPatternRe = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:HOURS?|HRS?|DAYS?|WEEKS?)\b`)
	digitRe           = regexp.MustCompile(`\d`)
)

// extractCertification fills course title, provider, serial number and duration
func extractCertification(doc *Document, rec *dto.ExtractedRecord) {
	if v, ok := firstMatch(doc, titleFromKeywords, titleFromLabel, titleAboveLabel, titleFromNarrative); ok {
		rec.CourseTitle = dto.Optional(v)
	}
	if v, ok := firstMatch(doc, labelStrategy(providerLabelRe, acceptProvider), providerFromInstitution, providerFromCompany, providerBeforeAccreditation); ok {
		rec.CourseProvider = dto.Optional(v)
	}
	if v, ok := firstMatch(doc, serialFromLabel, serialFromPattern); ok {
		rec.CertSerialNo = dto.Optional(v)
	}
	if v, ok := firstMatch(doc, durationFromLabel, durationFromPattern); ok {
		rec.CourseDuration = dto.Optional(v)
	}
}

// ---------------- course title ----------------

// isTitleCandidate rejects lines that cannot be a course title
func isTitleCandidate(upper string) bool {
	switch {
	case len(upper) < 10,
		isFieldLabel(upper),
		headerLineRe.MatchString(collapseSpaces(upper)),
		len(FindDates(upper)) > 0,
		identifierRe.MatchString(upper),
		isAddressLine(upper),
		institutionWords.containsAny(upper),
		companySuffixRe.MatchString(upper),
		accreditedRe.MatchString(upper),
		certifyPhraseRe.MatchString(upper),
		completedRe.MatchString(upper):
		return false
	}
	if words := strings.Fields(upper); personalTitles.has(strings.Trim(words[0], ".")) {
		return false
	}
	return true
}

// titleFromKeywords picks the first long line carrying course vocabulary
func titleFromKeywords(doc *Document) (string, bool) {
	for i, upper := range doc.Upper {
		if !isTitleCandidate(upper) {
			continue
		}
		if courseKeywords.count(upper) > 0 {
			return trimValue(doc.Orig[i]), true
		}
	}
	return "", false
}

func titleFromLabel(doc *Document) (string, bool) {
	for _, line := range doc.Orig {
		if m := courseTitleLabelRe.FindStringSubmatch(line); m != nil {
			if v := trimValue(m[1]); nonTrivial(v) {
				return v, true
			}
		}
	}
	return "", false
}

// titleAboveLabel handles certificates that print the title above its label
func titleAboveLabel(doc *Document) (string, bool) {
	for i, line := range doc.Orig {
		if i == 0 || !bareTitleLabelRe.MatchString(line) {
			continue
		}
		above := doc.Upper[i-1]
		if isFieldLabel(above) || len(FindDates(above)) > 0 {
			continue
		}
		if v := trimValue(doc.Orig[i-1]); nonTrivial(v) {
			return v, true
		}
	}
	return "", false
}

// titleFromNarrative reads "has successfully completed <title>" or the next
// non-filler line after it
func titleFromNarrative(doc *Document) (string, bool) {
	for i, line := range doc.Orig {
		m := completedRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		candidates := append([]string{m[1]}, doc.Orig[i+1:min(i+3, doc.Len())]...)
		for _, c := range candidates {
			c = trimValue(stripFiller(c))
			if nonTrivial(c) && len(FindDates(c)) == 0 {
				return c, true
			}
		}
	}
	return "", false
}

// ---------------- provider ----------------

func acceptProvider(v string) bool {
	return nonTrivial(v) && len(FindDates(v)) == 0 && !identifierRe.MatchString(strings.ToUpper(v))
}

func providerFromInstitution(doc *Document) (string, bool) {
	for i, upper := range doc.Upper {
		if isFieldLabel(upper) || certifyPhraseRe.MatchString(upper) || completedRe.MatchString(upper) {
			continue
		}
		if institutionWords.containsAny(upper) {
			return trimValue(doc.Orig[i]), true
		}
	}
	return "", false
}

func providerFromCompany(doc *Document) (string, bool) {
	for _, line := range doc.Orig {
		if m := companySuffixRe.FindStringSubmatch(line); m != nil {
			return trimValue(m[1]), true
		}
	}
	return "", false
}

// providerBeforeAccreditation takes the text before "is an Accredited Training
// Provider" on the same line, or the closest usable line above it
func providerBeforeAccreditation(doc *Document) (string, bool) {
	for i, line := range doc.Orig {
		loc := accreditedRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if v := trimValue(line[:loc[0]]); acceptProvider(v) {
			return v, true
		}
		for j := i - 1; j >= 0 && i-j <= 2; j-- {
			if v := trimValue(doc.Orig[j]); acceptProvider(v) && !skippableNameLine(doc.Upper[j]) {
				return v, true
			}
		}
	}
	return "", false
}

// ---------------- serial number ----------------

func serialFromLabel(doc *Document) (string, bool) {
	v, ok := labelScan(doc, serialLabelRe, func(v string) bool { return serialToken(v) != "" })
	if !ok {
		return "", false
	}
	return serialToken(v), true
}

// serialToken returns the first token of v that looks like a serial number
func serialToken(v string) string {
	for _, tok := range serialValueRe.FindAllString(strings.ToUpper(v), -1) {
		tok = strings.Trim(tok, "-/")
		if len(tok) >= 4 && !identifierRe.MatchString(tok) && len(FindDates(tok)) == 0 {
			return tok
		}
	}
	return ""
}

// serialFromPattern finds a letter-prefixed number such as "WSQ-123456" that is
// neither an identifier nor part of a date
func serialFromPattern(doc *Document) (string, bool) {
	dates := FindDates(doc.UpperText)
	for _, loc := range serialPatternRe.FindAllStringIndex(doc.UpperText, -1) {
		tok := doc.UpperText[loc[0]:loc[1]]
		if identifierRe.MatchString(tok) || overlapsDate(dates, loc) {
			continue
		}
		return tok, true
	}
	return "", false
}

func overlapsDate(dates []DateToken, loc []int) bool {
	for _, d := range dates {
		if loc[0] < d.End && d.Start < loc[1] {
			return true
		}
	}
	return false
}

// ---------------- duration ----------------

func durationFromLabel(doc *Document) (string, bool) {
	return labelScan(doc, durationLabelRe, func(v string) bool {
		return digitRe.MatchString(v) && len(FindDates(v)) == 0
	})
}

func durationFromPattern(doc *Document) (string, bool) {
	if m := durationPatternRe.FindString(doc.Text); m != "" {
		return strings.ToUpper(collapseSpaces(m)), true
	}
	return "", false
}
