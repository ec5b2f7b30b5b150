package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nameLabelRe     = regexp.MustCompile(`(?i)^\s*NAME(?:\s+OF\s+(?:WORKER|HOLDER|EMPLOYEE|PARTICIPANT|CANDIDATE|TRAINEE))?\b\s*[:.\-]*\s*(.*)$`)
	bareNameLabelRe = regexp.MustCompile(`(?i)^\s*NAME\s*[:.\-]*\s*$`)
	inlineNameRe    = regexp.MustCompile(`(?i)\bNAME\s*:\s*`)
	inlineExcludeRe = regexp.MustCompile(`(?i)(?:EMPLOYER|COMPANY|PROVIDER|COURSE|CENTRE|CENTER|SCHOOL|BANK)'?S?\s*$`)
	certifyPhraseRe = regexp.MustCompile(`(?i)THIS\s+IS\s+TO\s+CERTIFY\b(.*)$`)
	pureNumberRe    = regexp.MustCompile(`^[\d\s/.\-:]+$`)
	nameCharsRe     = regexp.MustCompile(`[^\p{L}\s'\-/.]+`)
)

// extractName resolves the holder's name. idLine and seeded come from the
// identifier extractor; seeded is only used when the label strategies fail.
func extractName(doc *Document, idLine int, seeded string) (string, bool) {
	return firstMatch(doc,
		nameFromLabel,
		nameFromInlineLabel,
		func(*Document) (string, bool) { return seeded, seeded != "" },
		func(d *Document) (string, bool) { return nameAboveIdentifier(d, idLine) },
		nameFromNarrative,
		nameAboveLabel,
	)
}

// cleanName strips identifiers and characters that cannot be part of a name
func cleanName(s string) string {
	s = identifierRe.ReplaceAllString(strings.ToUpper(s), " ")
	s = nameCharsRe.ReplaceAllString(s, " ")
	s = collapseSpaces(s)
	return strings.Trim(s, " -/.'")
}

// isValidName accepts two or more tokens carrying at least three letters between
// them, or one token of at least five letters. "A B" style OCR debris is rejected.
func isValidName(name string) bool {
	words := strings.Fields(name)
	switch {
	case len(words) >= 2:
		letters := 0
		for _, r := range name {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		return letters >= 3
	case len(words) == 1:
		return len([]rune(words[0])) >= 5
	}
	return false
}

// cleanCandidate returns the cleaned name in the line's original case when valid
func cleanCandidate(orig string) (string, bool) {
	name := cleanName(orig)
	if !isValidName(name) {
		return "", false
	}
	// keep the printed casing; cleanName upper-cases for matching only
	if cased := caseOf(orig, name); cased != "" {
		return cased, true
	}
	return name, true
}

// caseOf recovers the original casing of name from orig when orig contains it
func caseOf(orig, name string) string {
	folded := collapseSpaces(nameCharsRe.ReplaceAllString(identifierRe.ReplaceAllString(orig, " "), " "))
	folded = strings.Trim(folded, " -/.'")
	if strings.EqualFold(folded, name) {
		return folded
	}
	return ""
}

// skippableNameLine reports lines that can sit between a label and its value
func skippableNameLine(upper string) bool {
	return pureNumberRe.MatchString(upper) || identifierRe.MatchString(upper)
}

func nameFromLabel(doc *Document) (string, bool) {
	for i, line := range doc.Orig {
		m := nameLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rest := trimValue(m[1])
		// "NAME OF EMPLOYER" and friends are other fields
		if strings.HasPrefix(strings.ToUpper(rest), "OF ") {
			continue
		}
		if rest != "" && !nonNameWords.containsAny(strings.ToUpper(rest)) {
			if name, ok := cleanCandidate(rest); ok {
				return name, true
			}
		}

		for j := i + 1; j < doc.Len() && j <= i+3; j++ {
			upper := doc.Upper[j]
			if isFieldLabel(upper) {
				break
			}
			if skippableNameLine(upper) || nonNameWords.containsAny(upper) {
				continue
			}
			if name, ok := cleanCandidate(doc.Orig[j]); ok {
				return name, true
			}
		}
	}
	return "", false
}

// nameFromInlineLabel reads "NAME:" anywhere in a line, skipping "EMPLOYER NAME:" and similar.
// A value runs until the next "NAME:" or another field label.
func nameFromInlineLabel(doc *Document) (string, bool) {
	for _, line := range doc.Orig {
		locs := inlineNameRe.FindAllStringIndex(line, -1)
		for k, loc := range locs {
			if inlineExcludeRe.MatchString(line[:loc[0]]) {
				continue
			}
			end := len(line)
			if k+1 < len(locs) {
				end = locs[k+1][0]
			}
			if name, ok := cleanCandidate(cutAtInlineLabel(line[loc[1]:end])); ok {
				return name, true
			}
		}
	}
	return "", false
}

// nameAboveIdentifier handles certificates that print the name right above the FIN
func nameAboveIdentifier(doc *Document, idLine int) (string, bool) {
	if !doc.Flags.Certification || idLine < 0 {
		return "", false
	}
	for i := idLine - 1; i >= 0 && idLine-i <= 3; i-- {
		upper := doc.Upper[i]
		if isFieldLabel(upper) || nonNameWords.containsAny(upper) {
			continue
		}
		if name, ok := cleanCandidate(doc.Orig[i]); ok {
			return name, true
		}
	}
	return "", false
}

// nameFromNarrative reads "This is to certify that <name> has ..."
func nameFromNarrative(doc *Document) (string, bool) {
	for i, line := range doc.Orig {
		m := certifyPhraseRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		candidates := append([]string{m[1]}, doc.Orig[i+1:min(i+4, doc.Len())]...)
		for _, c := range candidates {
			c = stripFiller(c)
			if c == "" || nonNameWords.containsAny(strings.ToUpper(c)) {
				continue
			}
			if name, ok := cleanCandidate(c); ok {
				return name, true
			}
		}
	}
	return "", false
}

// stripFiller drops connective words from both ends of a narrative line
func stripFiller(s string) string {
	words := strings.Fields(identifierRe.ReplaceAllString(s, " "))
	isFiller := func(w string) bool {
		return fillerWords.has(strings.Trim(strings.ToUpper(w), ".,:;()"))
	}
	for len(words) > 0 && isFiller(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && isFiller(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// nameAboveLabel handles layouts that print the value above a bare NAME label
func nameAboveLabel(doc *Document) (string, bool) {
	for i, line := range doc.Orig {
		if i == 0 || !bareNameLabelRe.MatchString(line) {
			continue
		}
		above := doc.Upper[i-1]
		if isFieldLabel(above) || skippableNameLine(above) || nonNameWords.containsAny(above) {
			continue
		}
		if name, ok := cleanCandidate(doc.Orig[i-1]); ok {
			return name, true
		}
	}
	return "", false
}
