// Package search implements the free-text matching used by the list views.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// removeAccents removes diacritical marks, e.g. "Bogotá" → "Bogota"
func removeAccents(s string) string {
	t := norm.NFD.String(s)
	result := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, t)
	return norm.NFC.String(result)
}

// Normalize trims, strips accents and case-folds s
func Normalize(s string) string {
	return cases.Fold().String(removeAccents(strings.TrimSpace(s)))
}

// Matcher matches a query against record fields. The zero value and a blank
// query match everything.
type Matcher struct {
	query string
}

// NewMatcher prepares query for repeated matching
func NewMatcher(query string) Matcher {
	return Matcher{query: Normalize(query)}
}

// Empty reports whether the matcher accepts every record
func (m Matcher) Empty() bool { return m.query == "" }

// Match reports whether any field contains the query
func (m Matcher) Match(fields ...string) bool {
	if m.query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Normalize(f), m.query) {
			return true
		}
	}
	return false
}
