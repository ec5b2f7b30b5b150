package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareNames(t *testing.T) {
	assert.True(t, CompareNames("John Doe", "John Doe"))
	assert.True(t, CompareNames("John Doe", "MR JOHN DOE"))
	assert.True(t, CompareNames("John Doe", "Doe John"))
	assert.True(t, CompareNames("TAN AH KOW", "Tan Kow"))
	assert.True(t, CompareNames("MOHAMMED RAHMAN", "MOHAMED RAHMAN"))
	assert.False(t, CompareNames("John Doe", "Jane Doe"))
	assert.False(t, CompareNames("", "John Doe"))
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("tan ah kow", "TAN  AH-KOW"))
	assert.Equal(t, 0.0, NameSimilarity("", "TAN"))
	assert.Less(t, NameSimilarity("LIM WEI MING", "RAJ KUMAR"), NameMatchThreshold)
}
