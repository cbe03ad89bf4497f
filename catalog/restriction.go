package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	standaloneNot  = regexp.MustCompile(`(?i)\bnot\b`)
	sentenceBreaks = regexp.MustCompile(`[.?!]\s+`)
)

// RestrictionExtractor pulls an enrollment restriction out of a course
// description.
type RestrictionExtractor struct {
	exclusions *regexp.Regexp
	patterns   []*regexp.Regexp
	fallback   string
}

func NewRestrictionExtractor(rules *Rules) (*RestrictionExtractor, error) {
	e := &RestrictionExtractor{fallback: rules.DefaultRestriction}

	if len(rules.Exclusions) > 0 {
		exclusions, err := regexp.Compile("(?i)" + strings.Join(rules.Exclusions, "|"))
		if err != nil {
			return nil, fmt.Errorf("compile exclusions: %w", err)
		}
		e.exclusions = exclusions
	}

	for _, pattern := range rules.RestrictionPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile restriction pattern %q: %w", pattern, err)
		}
		e.patterns = append(e.patterns, re)
	}
	return e, nil
}

func (e *RestrictionExtractor) excluded(text string) bool {
	return e.exclusions != nil && e.exclusions.MatchString(text)
}

// Snippet returns the restriction clause found in description, if any.
func (e *RestrictionExtractor) Snippet(description string) (string, bool) {
	if !standaloneNot.MatchString(description) || e.excluded(description) {
		return "", false
	}

	for _, re := range e.patterns {
		m := re.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return strings.TrimSpace(m[1]), true
		}
		return strings.TrimSpace(m[0]), true
	}

	for _, sentence := range splitSentences(description) {
		if standaloneNot.MatchString(sentence) && !e.excluded(sentence) {
			return strings.TrimSpace(sentence), true
		}
	}
	return "", false
}

// Extract returns the restriction for a description, falling back to the
// default sentence. A nil description has no restriction.
func (e *RestrictionExtractor) Extract(description *string) string {
	if description == nil {
		return e.fallback
	}
	if snippet, ok := e.Snippet(*description); ok {
		return snippet
	}
	return e.fallback
}

// splitSentences splits after '.', '?' or '!' followed by whitespace; the
// punctuation stays with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBreaks.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(sentences, text[start:])
}
