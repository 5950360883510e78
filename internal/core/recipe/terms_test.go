package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandTerms_Symmetry(t *testing.T) {
	forward := ExpandTerms("chicken breast")
	assert.Contains(t, forward, "chicken")
	assert.Contains(t, forward, "breast")
	assert.Contains(t, forward, "pollo")
	assert.Contains(t, forward, "gallina")

	reverse := ExpandTerms("pollo entero")
	assert.Contains(t, reverse, "pollo")
	assert.Contains(t, reverse, "entero")
	assert.Contains(t, reverse, "chicken")
}

func TestExpandTerms_DropsShortTokens(t *testing.T) {
	terms := ExpandTerms("2 cups of spinach")
	assert.NotContains(t, terms, "2")
	assert.NotContains(t, terms, "of")
	assert.Contains(t, terms, "cups")
	assert.Contains(t, terms, "espinaca")
	assert.Contains(t, terms, "espinacas")
}

func TestExpandTerms_LowercasesAndDedupes(t *testing.T) {
	terms := ExpandTerms("Tomato, TOMATO tomato")

	count := 0
	for _, term := range terms {
		assert.Equal(t, strings.ToLower(term), term)
		if term == "tomato" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, terms, "tomate")
}

func TestExpandTerms_PartialReverseMatch(t *testing.T) {
	// "espinacas" 包含同義詞 "espinaca"
	terms := ExpandTerms("espinacas frescas")
	assert.Contains(t, terms, "spinach")
}

func TestExpandTerms_Empty(t *testing.T) {
	assert.Empty(t, ExpandTerms(""))
	assert.Empty(t, ExpandTerms("a an of"))
}
