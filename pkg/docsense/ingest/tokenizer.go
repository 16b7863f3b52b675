// Package ingest normalizes documentation text before featurization:
// markup removal and tokenization.
package ingest

import (
	"strings"
	"unicode"
)

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stopwords   map[string]struct{}
	keepNumbers bool
}

// NewTokenizer creates a new tokenizer with the given stopword list.
// Pure-numeric tokens are kept: status codes such as "401" or "429" carry
// meaning in API documentation.
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops, keepNumbers: true}
}

// SetKeepNumbers toggles whether pure-numeric tokens survive tokenization.
func (t *Tokenizer) SetKeepNumbers(keep bool) {
	t.keepNumbers = keep
}

// Tokenize splits text into lower-cased tokens, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := t.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// processToken applies cleaning, numeric filtering and stopword filtering.
func (t *Tokenizer) processToken(token string) string {
	word := cleanToken(token)
	if word == "" {
		return ""
	}
	// Single letters are noise, single digits are not ("2", "5" in limits).
	if len([]rune(word)) == 1 && !unicode.IsDigit([]rune(word)[0]) {
		return ""
	}
	if !t.keepNumbers && isNumericOnly(word) {
		return ""
	}
	if t.isStopword(word) {
		return ""
	}
	return word
}

// cleanToken strips leading/trailing hyphens and underscores and collapses
// consecutive hyphens.
func cleanToken(token string) string {
	token = strings.Trim(token, "-_")
	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	return token
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}
