package utils

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Aashish23092/workpass-ocr/dto"
)

var (
	courseDateLabelRe = regexp.MustCompile(`(?i)\bCOURSE\s+(?:DATES?|PERIOD)\b`)
	dobLabelRe        = regexp.MustCompile(`(?i)\b(?:DATE\s+OF\s+BIRTH|BIRTH\s*DATE|D\.\s*O\.\s*B\b\.?|DOB\b)`)
	issueLabelRe      = regexp.MustCompile(`(?i)\b(?:DATE\s+OF\s+ISSUE|ISSUED?\s+DATE|DATE\s+ISSUED|ISSUED\s+ON|VALID\s+FROM)\b`)
	expiryLabelRe     = regexp.MustCompile(`(?i)\b(?:DATE\s+OF\s+EXPIRY|EXPIRY\s+DATE|EXPIRY|EXPIRES(?:\s+ON)?|EXPIRING\s+ON|VALID\s+(?:UNTIL|TILL|TO|UP\s+TO|THRU|THROUGH)|VALIDITY(?:\s+PERIOD)?)\b`)

	noExpiryRe  = regexp.MustCompile(`(?i)\b(?:NO\s+EXPIRY|NON[\s\-]?EXPIRING|DOES\s+NOT\s+EXPIRE|LIFETIME\s+VALIDITY|VALID\s+FOR\s+LIFETIME)\b`)
	nilValueRe  = regexp.MustCompile(`(?i)^[\s:.\-]*(?:NIL|NONE|N/A|LIFETIME|NO\s+EXPIRY|DOES\s+NOT\s+EXPIRE)\b`)
	rangeJoinRe = regexp.MustCompile(`(?i)^\s*(?:TO|UNTIL|TILL|-|–)\s*$`)
	issueWordRe = regexp.MustCompile(`(?i)\b(?:DATE|DATED|ISSUED(?:\s+ON)?|AWARDED(?:\s+ON)?)\s*[:\-]?\s*$`)
	conductedRe = regexp.MustCompile(`(?i)\b(?:CONDUCTED|HELD|ATTENDED|COMPLETED)(?:\s+(?:ON|FROM|BETWEEN))?\s*[:\-]?\s*$`)
	textMonthRe = regexp.MustCompile(`[A-Za-z]{3}`)
)

// dateSet is the ordered list of dates of one capture plus which ones a role already took
type dateSet struct {
	text   string
	tokens []DateToken
	used   []bool
}

func newDateSet(text string) *dateSet {
	tokens := FindDates(text)
	return &dateSet{text: text, tokens: tokens, used: make([]bool, len(tokens))}
}

// take marks token i as assigned and returns its value
func (s *dateSet) take(i int) *string {
	s.used[i] = true
	return dto.Optional(s.tokens[i].Value)
}

// afterLabel returns the index of the date that belongs to a label ending at pos.
// The date must be on the label's line or, when that line has none, on the next
// line unless it starts another label. A range "X TO Y" yields Y when rangeEnd is set.
func (s *dateSet) afterLabel(pos int, rangeEnd bool) int {
	lineEnd := s.lineEnd(pos)
	limit := lineEnd
	if !s.hasTokenIn(pos, lineEnd) && lineEnd < len(s.text) {
		next := lineEnd + 1
		if !isFieldLabel(strings.ToUpper(s.text[next:s.lineEnd(next)])) {
			limit = s.lineEnd(next)
		}
	}

	for i, t := range s.tokens {
		if t.Start < pos || t.Start >= limit || s.used[i] {
			continue
		}
		if rangeEnd && i+1 < len(s.tokens) && s.joinedRange(i) {
			s.used[i] = true
			return i + 1
		}
		return i
	}
	return -1
}

func (s *dateSet) lineEnd(pos int) int {
	if i := strings.IndexByte(s.text[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(s.text)
}

func (s *dateSet) hasTokenIn(from, to int) bool {
	for _, t := range s.tokens {
		if t.Start >= from && t.Start < to {
			return true
		}
	}
	return false
}

// joinedRange reports "tokens[i] TO tokens[i+1]"
func (s *dateSet) joinedRange(i int) bool {
	return rangeJoinRe.MatchString(s.text[s.tokens[i].End:s.tokens[i+1].Start])
}

// labelled returns the first unassigned date following any match of label
func (s *dateSet) labelled(label *regexp.Regexp, rangeEnd bool) int {
	for _, loc := range label.FindAllStringIndex(s.text, -1) {
		if i := s.afterLabel(loc[1], rangeEnd); i >= 0 {
			return i
		}
	}
	return -1
}

// preceded returns the first unassigned date whose preceding text matches prefix
func (s *dateSet) preceded(prefix *regexp.Regexp, textMonthOnly bool) int {
	for i, t := range s.tokens {
		if s.used[i] || (textMonthOnly && !textMonthRe.MatchString(t.Raw)) {
			continue
		}
		if prefix.MatchString(s.text[max(0, t.Start-30):t.Start]) {
			return i
		}
	}
	return -1
}

func (s *dateSet) firstRange() int {
	for i := 0; i+1 < len(s.tokens); i++ {
		if !s.used[i] && !s.used[i+1] && s.joinedRange(i) {
			s.used[i] = true
			return i + 1
		}
	}
	return -1
}

// unassigned returns the indexes of free dates sorted by value, earliest first
func (s *dateSet) unassigned() []int {
	var idx []int
	for i := range s.tokens {
		if !s.used[i] {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return s.tokens[idx[a]].Value < s.tokens[idx[b]].Value })
	return idx
}

// assignDateRoles fills date of birth, issue and expiry. Labelled rules run
// first and a filled role is never overwritten by a later rule.
func assignDateRoles(doc *Document, rec *dto.ExtractedRecord) {
	s := newDateSet(doc.Text)

	setIfEmpty := func(dst **string, i int) {
		if *dst == nil && i >= 0 {
			*dst = s.take(i)
		}
	}

	// course dates describe the training, not the holder
	setIfEmpty(&rec.IssueDate, s.labelled(courseDateLabelRe, true))
	setIfEmpty(&rec.DateOfBirth, s.labelled(dobLabelRe, false))

	if i := s.labelled(issueLabelRe, false); rec.IssueDate == nil && i >= 0 {
		rec.IssueDate = s.take(i)
		// "VALID FROM X TO Y"
		if i+1 < len(s.tokens) && !s.used[i+1] && s.joinedRange(i) {
			rec.ExpiryDate = s.take(i + 1)
		}
	}

	if rec.ExpiryDate == nil {
		if nilAfterExpiryLabel(s) {
			rec.ExpiryDate = dto.Optional(dto.NoExpiry)
		} else if i := s.labelled(expiryLabelRe, true); i >= 0 {
			rec.ExpiryDate = s.take(i)
		} else if noExpiryRe.MatchString(s.text) {
			rec.ExpiryDate = dto.Optional(dto.NoExpiry)
		}
	}

	// weaker issue date forms, tried once every labelled date is taken
	if rec.IssueDate == nil {
		setIfEmpty(&rec.IssueDate, s.preceded(issueWordRe, true))
	}
	if rec.IssueDate == nil {
		setIfEmpty(&rec.IssueDate, s.firstRange())
	}
	if rec.IssueDate == nil {
		setIfEmpty(&rec.IssueDate, s.preceded(conductedRe, false))
	}

	positionalDates(doc, s, rec)
}

// nilAfterExpiryLabel reports an expiry label whose own line reads NIL, LIFETIME
// or another no-expiry phrase instead of a date
func nilAfterExpiryLabel(s *dateSet) bool {
	for _, loc := range expiryLabelRe.FindAllStringIndex(s.text, -1) {
		if nilValueRe.MatchString(s.text[loc[1]:s.lineEnd(loc[1])]) {
			return true
		}
	}
	return false
}

// positionalDates assigns whatever the labels left. On non-certificates with
// two or more free dates the earliest is the holder's birth date; the rest
// become issue/expiry in order. Certificates carry no birth date.
func positionalDates(doc *Document, s *dateSet, rec *dto.ExtractedRecord) {
	wantDOB := rec.DateOfBirth == nil && !doc.Flags.Certification

	if free := s.unassigned(); wantDOB && len(free) >= 2 {
		rec.DateOfBirth = s.take(free[0])
		wantDOB = false
	}

	if rec.IssueDate == nil && rec.ExpiryDate == nil {
		free := s.unassigned()
		switch {
		case len(free) >= 2:
			rec.IssueDate = s.take(free[0])
			rec.ExpiryDate = s.take(free[len(free)-1])
		case len(free) == 1 && doc.Flags.Certification:
			rec.IssueDate = s.take(free[0])
		case len(free) == 1:
			// a lone date on a permit or card is read as expiry, so the
			// birth date below stays empty instead of taking the earliest date
			rec.ExpiryDate = s.take(free[0])
		}
	}

	if free := s.unassigned(); wantDOB && len(free) > 0 {
		rec.DateOfBirth = s.take(free[0])
	}
}
