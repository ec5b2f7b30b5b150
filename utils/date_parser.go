package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const monthNamePattern = `JAN(?:UARY)?|FEB(?:RUARY)?|MAR(?:CH)?|APR(?:IL)?|MAY|JUNE?|JULY?|AUG(?:UST)?|SEPT?(?:EMBER)?|OCT(?:OBER)?|NOV(?:EMBER)?|DEC(?:EMBER)?`

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)
	textDateRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:ST|ND|RD|TH)?[\s\-./,]*(` + monthNamePattern + `)\.?[\s\-./,]*(\d{4})\b`)

	monthByPrefix = map[string]int{
		"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
		"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
	}
)

// DateToken is a date found in a capture, with its canonical value and position
type DateToken struct {
	Value string // YYYY-MM-DD
	Raw   string
	Start int
	End   int
}

// parseNumericDate parses the first D/M/YYYY style date in s ("/", "-" or "." separators)
func parseNumericDate(s string) (string, bool) {
	m := numericDateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return canonicalDate(m[1], m[2], m[3])
}

// parseTextDate parses the first "13 Feb 2022" / "13-FEBRUARY-2022" style date in s
func parseTextDate(s string) (string, bool) {
	m := textDateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return canonicalTextDate(m)
}

// FindDates returns every date in text in document order.
// Overlapping matches keep the one that starts first.
func FindDates(text string) []DateToken {
	var tokens []DateToken

	for _, form := range []struct {
		re    *regexp.Regexp
		parse func(string) (string, bool)
	}{
		{numericDateRe, parseNumericDate},
		{textDateRe, parseTextDate},
	} {
		for _, loc := range form.re.FindAllStringIndex(text, -1) {
			raw := text[loc[0]:loc[1]]
			if v, ok := form.parse(raw); ok {
				tokens = append(tokens, DateToken{Value: v, Raw: raw, Start: loc[0], End: loc[1]})
			}
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })

	out := tokens[:0]
	lastEnd := -1
	for _, t := range tokens {
		if t.Start < lastEnd {
			continue
		}
		out = append(out, t)
		lastEnd = t.End
	}
	return out
}

func canonicalTextDate(m []string) (string, bool) {
	name := strings.ToUpper(m[2])
	if len(name) < 3 {
		return "", false
	}
	month, ok := monthByPrefix[name[:3]]
	if !ok {
		return "", false
	}
	return canonicalDate(m[1], strconv.Itoa(month), m[3])
}

func canonicalDate(day, month, year string) (string, bool) {
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return "", false
	}
	return fmt.Sprintf("%s-%02d-%02d", year, mo, d), true
}
