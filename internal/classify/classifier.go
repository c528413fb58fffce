// Package classify maps extracted document text to a category with a
// confidence score in [0,1].
package classify

import (
	"math"
	"strings"
	"unicode"

	"reception-backend/internal/category"
)

const (
	// matchWindow caps how much text participates in matching.
	matchWindow = 2000

	// minScore is the fuzzy score below which a document stays unclassified.
	minScore = 50.0

	exactConfidence = 0.95
	fuzzyBase       = 0.6
	fuzzySpan       = 0.3
)

// Classifier matches text against a keyword vocabulary.
type Classifier struct {
	vocab map[category.Category][]string
}

// New creates a Classifier. A nil vocabulary falls back to the default.
func New(vocab map[category.Category][]string) *Classifier {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	lowered := make(map[category.Category][]string, len(vocab))
	for cat, keywords := range vocab {
		kws := make([]string, len(keywords))
		for i, kw := range keywords {
			kws[i] = strings.ToLower(kw)
		}
		lowered[cat] = kws
	}
	return &Classifier{vocab: lowered}
}

// Classify returns the best-matching category and a confidence score.
// Empty text always yields Unclassified with confidence 0.
func (c *Classifier) Classify(text string) (category.Category, float64) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return category.Unclassified, 0.0
	}

	window := []rune(trimmed)
	if len(window) > matchWindow {
		window = window[:matchWindow]
	}
	lower := strings.ToLower(string(window))
	textTokens := tokenize(lower)

	best := category.Unclassified
	bestScore := 0.0
	bestExact := false

	for cat, keywords := range c.vocab {
		for _, kw := range keywords {
			score, exact := matchKeyword(kw, lower, textTokens)
			if score > bestScore || (score == bestScore && exact && !bestExact) {
				bestScore = score
				bestExact = exact
				best = cat
			}
		}
	}

	if bestScore < minScore {
		return category.Unclassified, 0.0
	}

	confidence := fuzzyBase + (bestScore/100.0)*fuzzySpan
	if bestExact {
		confidence = exactConfidence
	}
	confidence *= lengthFactor(len([]rune(trimmed)))

	return best, math.Round(confidence*1000) / 1000
}

// matchKeyword scores a lowered keyword against the text. A substring hit is
// an exact match (score 100); otherwise the score is the share of keyword
// tokens found in the text token set, allowing inflected forms for longer
// tokens.
func matchKeyword(kw, lower string, textTokens map[string]struct{}) (float64, bool) {
	if strings.Contains(lower, kw) {
		return 100.0, true
	}

	kwTokens := tokenizeList(kw)
	if len(kwTokens) == 0 {
		return 0.0, false
	}
	matched := 0
	for _, token := range kwTokens {
		if tokenPresent(token, textTokens) {
			matched++
		}
	}
	return 100.0 * float64(matched) / float64(len(kwTokens)), false
}

func tokenPresent(token string, textTokens map[string]struct{}) bool {
	if _, ok := textTokens[token]; ok {
		return true
	}
	// Inflected forms: a longer text token sharing the keyword stem counts.
	if len([]rune(token)) >= 5 {
		for t := range textTokens {
			if strings.HasPrefix(t, token) {
				return true
			}
		}
	}
	return false
}

// lengthFactor penalizes very short extractions, which usually mean poor OCR.
func lengthFactor(textLen int) float64 {
	switch {
	case textLen < 50:
		return 0.5
	case textLen < 150:
		return 0.75
	case textLen < 300:
		return 0.9
	default:
		return 1.0
	}
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range tokenizeList(s) {
		out[token] = struct{}{}
	}
	return out
}

func tokenizeList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
