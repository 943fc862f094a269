// Package search holds the free-text matching rules shared by every event store.
package search

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Normalize trims the term. An empty result disables searching.
func Normalize(term string) string {
	return strings.TrimSpace(term)
}

// LikePattern returns a SQL LIKE/ILIKE pattern that matches term as a substring.
// Callers must declare '\' as the escape character.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Matches reports whether any field contains term, ignoring case.
func Matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
