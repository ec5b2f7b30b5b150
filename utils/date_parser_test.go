package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumericDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"13/02/2022", "2022-02-13", true},
		{"13-02-2022", "2022-02-13", true},
		{"3.2.2022", "2022-02-03", true},
		{"DOB: 01/12/1990", "1990-12-01", true},
		{"32/01/2022", "", false},
		{"12/13/2022", "", false},
		{"13/02/22", "", false},
		{"no date here", "", false},
	}

	for _, tt := range tests {
		got, ok := parseNumericDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTextDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"13 Feb 2022", "2022-02-13"},
		{"13 FEBRUARY 2022", "2022-02-13"},
		{"13th Sept 2022", "2022-09-13"},
		{"1-Mar-2021", "2021-03-01"},
		{"5 May, 2020", "2020-05-05"},
	}

	for _, tt := range tests {
		got, ok := parseTextDate(tt.in)
		assert.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, ok := parseTextDate("13 Foo 2022")
	assert.False(t, ok)
}

func TestDateFormsNormalizeToSameValue(t *testing.T) {
	for _, in := range []string{"13/02/2022", "13-02-2022", "13.02.2022", "13 February 2022", "13 Feb 2022", "13 FEB 2022"} {
		tokens := FindDates("DATE: " + in)
		if assert.Len(t, tokens, 1, in) {
			assert.Equal(t, "2022-02-13", tokens[0].Value, in)
			assert.Equal(t, in, tokens[0].Raw)
		}
	}
}

func TestFindDates(t *testing.T) {
	tokens := FindDates("DOB 01/02/1990 issued 5 March 2020\nexpires 31-12-2030 bad 40/40/2020")

	if assert.Len(t, tokens, 3) {
		assert.Equal(t, "1990-02-01", tokens[0].Value)
		assert.Equal(t, "2020-03-05", tokens[1].Value)
		assert.Equal(t, "5 March 2020", tokens[1].Raw)
		assert.Equal(t, "2030-12-31", tokens[2].Value)
		assert.Less(t, tokens[0].Start, tokens[1].Start)
	}
}
