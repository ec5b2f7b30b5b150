package utils

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// NameMatchThreshold is the Jaro-Winkler similarity above which two names are treated as the same person
const NameMatchThreshold = 0.9

// NormalizeName upper-cases and keeps letters and single spaces only
func NormalizeName(s string) string {
	return cleanName(strings.NewReplacer(".", " ", "-", " ", "/", " ", "'", "").Replace(s))
}

// CompareNames reports whether two extracted names refer to the same holder.
// Word order, titles and dropped middle names ("TAN AH KOW" vs "TAN KOW") are tolerated.
func CompareNames(name1, name2 string) bool {
	if strings.TrimSpace(name1) == "" || strings.TrimSpace(name2) == "" {
		return false
	}

	norm1 := NormalizeName(name1)
	norm2 := NormalizeName(name2)

	if norm1 == norm2 {
		return true
	}
	if strings.Contains(norm1, norm2) || strings.Contains(norm2, norm1) {
		return true
	}
	if NameSimilarity(norm1, norm2) >= NameMatchThreshold {
		return true
	}

	words1 := strings.Fields(norm1)
	words2 := strings.Fields(norm2)
	if len(words1) > len(words2) {
		words1, words2 = words2, words1
	}

	matchCount := 0
	for _, w1 := range words1 {
		for _, w2 := range words2 {
			if w1 == w2 {
				matchCount++
				break
			}
		}
	}

	// every word of the shorter name appears in the longer one
	return len(words1) > 0 && matchCount == len(words1)
}

// NameSimilarity returns the Jaro-Winkler similarity of the normalized names (0..1)
func NameSimilarity(name1, name2 string) float64 {
	a, b := NormalizeName(name1), NormalizeName(name2)
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, metrics.NewJaroWinkler())
}
