package circuits

import (
	"strings"

	"github.com/aristath/qsim/internal/domain"
)

// KeywordDetector resolves free-text algorithm descriptions by keyword match.
// It implements domain.Detector. First matching rule wins, so more specific
// keywords are listed before generic ones; anything unmatched resolves to the
// generic template.
type KeywordDetector struct {
	rules []detectRule
}

type detectRule struct {
	id       domain.AlgorithmID
	keywords []string
}

// NewKeywordDetector creates the default detector.
func NewKeywordDetector() *KeywordDetector {
	return &KeywordDetector{
		rules: []detectRule{
			{id: domain.AlgorithmDeutschJozsa, keywords: []string{"deutsch", "jozsa", "balanced"}},
			{id: domain.AlgorithmTeleportation, keywords: []string{"teleport"}},
			{id: domain.AlgorithmSuperdense, keywords: []string{"superdense", "dense coding"}},
			{id: domain.AlgorithmQFT, keywords: []string{"fourier", "qft"}},
			{id: domain.AlgorithmGrover, keywords: []string{"grover", "search"}},
			{id: domain.AlgorithmShor, keywords: []string{"shor", "factor"}},
			{id: domain.AlgorithmGHZ, keywords: []string{"ghz"}},
			{id: domain.AlgorithmBell, keywords: []string{"bell", "entangle", "epr"}},
		},
	}
}

// Detect maps a description to an algorithm identifier. Matching is
// case-insensitive substring search; unknown text yields the generic family.
func (d *KeywordDetector) Detect(description string) domain.AlgorithmID {
	text := strings.ToLower(description)
	for _, rule := range d.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.id
			}
		}
	}
	return domain.AlgorithmGeneric
}
