// Package lexicon tokenizes text for keyword scoring and topic tagging.
package lexicon

import (
	"sort"
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "not": {}, "no": {}, "its": {}, "their": {}, "they": {}, "we": {},
	"you": {}, "he": {}, "she": {}, "will": {}, "shall": {}, "may": {}, "can": {}, "which": {},
	"who": {}, "what": {}, "when": {}, "where": {}, "page": {}, "all": {}, "any": {}, "if": {},
	"than": {}, "then": {}, "there": {}, "been": {}, "such": {}, "other": {}, "into": {},
}

// Tokenize lowercases text and splits it into letter/digit runs.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// Terms is Tokenize without stopwords.
func Terms(text string) []string {
	tokens := Tokenize(text)
	out := tokens[:0]
	for _, t := range tokens {
		if _, stop := stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// UniqueTerms returns the distinct terms of text in first-seen order.
func UniqueTerms(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range Terms(text) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TopTerms returns up to n of the most frequent terms across texts, ignoring numbers and
// terms shorter than three runes. Ties break alphabetically.
func TopTerms(texts []string, n int) []string {
	freq := map[string]int{}
	for _, s := range texts {
		for _, t := range Terms(s) {
			if len([]rune(t)) < 3 || isNumber(t) {
				continue
			}
			freq[t]++
		}
	}
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
