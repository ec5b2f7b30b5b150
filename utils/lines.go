package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Lines holds the non-empty trimmed lines of a capture in two index-aligned views
type Lines struct {
	Orig  []string
	Upper []string
}

// Len returns the number of lines
func (l Lines) Len() int {
	return len(l.Orig)
}

// NormalizeLines cleans and splits OCR text into lines.
// Full-width forms and ligatures are folded with NFKC first.
func NormalizeLines(text string) Lines {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r", "")
	rawLines := strings.Split(text, "\n")

	out := Lines{
		Orig:  make([]string, 0, len(rawLines)),
		Upper: make([]string, 0, len(rawLines)),
	}
	for _, l := range rawLines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out.Orig = append(out.Orig, l)
		out.Upper = append(out.Upper, strings.ToUpper(l))
	}
	return out
}
