package utils

import (
	"testing"

	"github.com/agnivade/levenshtein"
	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance_KnownValues(t *testing.T) {
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 3, LevenshteinDistance("", "abc"))
	assert.Equal(t, 3, LevenshteinDistance("abc", ""))
	assert.Equal(t, 0, LevenshteinDistance("abc", "abc"))
	assert.Equal(t, 0, LevenshteinDistance("", ""))
	assert.Equal(t, 1, LevenshteinDistance("síndrome", "sindrome"))
}

func TestLevenshteinDistance_MatchesReferenceImplementation(t *testing.T) {
	pairs := [][2]string{
		{"marfan", "marfanoid"},
		{"ehlers-danlos", "ehlers danlos"},
		{"fibrosis", "fibrose"},
		{"huntington", "hungtinton"},
		{"doença", "doenca"},
		{"wilson", "nelson"},
	}
	for _, p := range pairs {
		assert.Equal(t, levenshtein.ComputeDistance(p[0], p[1]), LevenshteinDistance(p[0], p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestLevenshteinDistance_Symmetric(t *testing.T) {
	assert.Equal(t, LevenshteinDistance("gaucher", "goucher"), LevenshteinDistance("goucher", "gaucher"))
}

func TestIsSimilar(t *testing.T) {
	// shorter length 6 allows floor(1.8) = 1 edit
	assert.True(t, IsSimilar("marfans", "marfan"))
	assert.False(t, IsSimilar("wilson", "nelson"))
	// length 7 allows floor(2.1) = 2 edits
	assert.True(t, IsSimilar("gaucher", "goucher"))
	// min length 3 -> 0 edits allowed
	assert.False(t, IsSimilar("abc", "abd"))
	assert.True(t, IsSimilar("abc", "abc"))
}

func TestNormalizeTerm(t *testing.T) {
	decomposed := "Si\u0301ndrome de Marfan "
	assert.Equal(t, "síndrome de marfan", NormalizeTerm(decomposed))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 1, WordCount(""))
	assert.Equal(t, 2, WordCount("Ehlers-Danlos  type"))
}
