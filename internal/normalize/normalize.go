// Package normalize validates extracted completion objects per domain and repairs every
// gap with fallback content, so each Normalize function is total over its output type.
//
// Each domain has two layers. ValidateX reports what the model actually produced together
// with the gaps found (missing fields, wrong types, out-of-range values, duplicates).
// NormalizeX applies the domain's substitution policy to that validation and returns a
// schema-complete domain.Result, marked partial when the policy says so.
package normalize

import (
	"fmt"
	"strings"
)

// Gap is one validation shortfall. Gaps are never returned as errors.
type Gap struct {
	Field  string
	Reason string
}

func (g Gap) String() string {
	return fmt.Sprintf("%s: %s", g.Field, g.Reason)
}

// Validation is the genuine part of a completion plus the gaps found in it.
type Validation[T any] struct {
	Value T
	Gaps  []Gap
}

// OK reports whether validation found no gaps.
func (v Validation[T]) OK() bool {
	return len(v.Gaps) == 0
}

type gaps []Gap

func (g *gaps) add(field, format string, args ...any) {
	*g = append(*g, Gap{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func itemField(list string, i int, field string) string {
	if field == "" {
		return fmt.Sprintf("%s[%d]", list, i)
	}
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}

// collapse trims s and folds internal whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}

// canonicalLabel lowercases and joins words with underscores: "Evidence Check" -> "evidence_check".
func canonicalLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}
