package utils

import (
	"regexp"
	"strings"
)

// wordSet is an immutable set of upper-case words or phrases
type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// containsAny reports whether upper contains any entry as a whole word or phrase
func (s wordSet) containsAny(upper string) bool {
	return s.count(upper) > 0
}

// count returns how many entries of s occur in upper as whole words or phrases
func (s wordSet) count(upper string) int {
	padded := " " + wordBoundaryRe.ReplaceAllString(upper, " ") + " "
	n := 0
	for w := range s {
		if strings.Contains(padded, " "+w+" ") {
			n++
		}
	}
	return n
}

var wordBoundaryRe = regexp.MustCompile(`[^A-Z0-9]+`)

var (
	nationalities = []string{
		"SINGAPORE CITIZEN", "SINGAPOREAN", "MALAYSIAN", "INDIAN", "BANGLADESHI",
		"CHINESE", "MYANMAR", "BURMESE", "FILIPINO", "PHILIPPINE", "INDONESIAN",
		"THAI", "SRI LANKAN", "VIETNAMESE", "PAKISTANI", "NEPALESE", "NEPALI",
		"CAMBODIAN", "TAIWANESE", "KOREAN", "JAPANESE", "BRITISH", "AMERICAN",
		"AUSTRALIAN", "HONG KONG",
	}

	races = []string{
		"CHINESE", "MALAY", "INDIAN", "EURASIAN", "TAMIL", "BENGALI", "PUNJABI",
		"SIKH", "JAVANESE", "BOYANESE", "FILIPINO", "THAI", "BURMESE",
		"SINHALESE", "CAUCASIAN",
	}

	// words that never appear inside a person's name on these documents
	nonNameWords = newWordSet(
		"PTE", "LTD", "LIMITED", "COMPANY", "TRAINING", "CENTRE", "CENTER", "INSTITUTE",
		"ACADEMY", "SCHOOL", "COLLEGE", "UNIVERSITY", "POLYTECHNIC", "COURSE", "CERTIFICATE",
		"CERTIFY", "CERTIFIED", "SAFETY", "ACCREDITED", "PROVIDER", "SINGAPORE", "REPUBLIC",
		"MINISTRY", "MANPOWER", "GOVERNMENT", "AUTHORITY", "HEREBY", "AWARDED", "ATTAINMENT",
		"STATEMENT", "ACHIEVEMENT", "COMPLETION", "PARTICIPATION", "ATTENDANCE", "WORK",
		"PERMIT", "IDENTITY", "CARD", "EMPLOYER", "NATIONALITY", "ADDRESS", "DATE", "BIRTH",
		"EXPIRY", "ISSUE", "VALID", "SERIAL", "NUMBER", "DIRECTOR", "MANAGER", "SIGNATURE",
		"OCCUPATION", "SECTOR", "CONSTRUCTION", "SKILLSFUTURE", "WSQ",
	)

	// connective words of narrative certificates
	fillerWords = newWordSet(
		"THIS", "IS", "TO", "CERTIFY", "THAT", "HAS", "HAVE", "WHO", "THE", "A", "AN",
		"MR", "MRS", "MS", "MDM", "MISS", "DR", "OF", "AND", "BEARING", "HOLDER",
		"NRIC", "FIN", "NO", "SUCCESSFULLY", "COMPLETED", "ATTENDED", "IN", "ON", "FOR",
	)

	personalTitles = newWordSet("MR", "MRS", "MS", "MDM", "MISS", "DR")

	courseKeywords = newWordSet(
		"COURSE", "TRAINING", "SAFETY", "SUPERVISOR", "SUPERVISORS", "WORKER", "WORKERS",
		"OPERATOR", "OPERATION", "OPERATIONS", "CONSTRUCTION", "SCAFFOLD", "SCAFFOLDING",
		"HEIGHT", "HEIGHTS", "LIFTING", "RIGGER", "RIGGING", "SIGNALMAN", "SIGNALLING",
		"FORKLIFT", "CRANE", "CONFINED", "WELDING", "FIRST AID", "FORMWORK", "EXCAVATOR",
		"ELECTRICAL", "MANAGEMENT", "ORIENTATION", "BUILDING", "METAL", "FIRE", "HAZARD",
		"RISK", "ASSESSMENT", "CSOC", "BCSS", "WAH", "APPLY", "PERFORM", "CERTIFICATE",
	)

	institutionWords = newWordSet(
		"INSTITUTE", "ACADEMY", "TRAINING CENTRE", "TRAINING CENTER", "SCHOOL", "COLLEGE",
		"POLYTECHNIC", "UNIVERSITY",
	)

	// street vocabulary; directional words and DR are left out because they also appear in names
	streetWords = newWordSet(
		"BLK", "BLOCK", "STREET", "ST", "ROAD", "RD", "AVENUE", "AVE", "DRIVE", "LANE",
		"CRESCENT", "CRES", "JALAN", "LORONG", "LOR", "TERRACE", "DORMITORY", "DORM", "LODGE",
	)

	nationalityVocab = compileVocabulary(nationalities)
	raceVocab        = compileVocabulary(races)
)

// compileVocabulary builds one whole-word alternation, longest entries first
func compileVocabulary(words []string) *regexp.Regexp {
	sorted := append([]string(nil), words...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j]) > len(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}
