package normalize

import (
	"strings"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/fallback"
)

// thoughtsRoot returns the object holding the category lists. Both the flat form and a
// nested {"thoughts": {...}} object are accepted.
func thoughtsRoot(node extract.Node) extract.Node {
	if nested, ok := node.Object("thoughts"); ok {
		return nested
	}
	return node
}

// ValidateThoughts trims, drops blanks, dedupes case-insensitively and caps every category.
func ValidateThoughts(node extract.Node) Validation[domain.ThoughtSet] {
	var found gaps
	var set domain.ThoughtSet

	root := thoughtsRoot(node)
	for _, c := range domain.ThoughtCategories() {
		field := string(c)
		if _, ok := root.Array(field); !ok {
			found.add(field, "missing or not an array")
			set.SetCategory(c, make([]string, 0))
			continue
		}

		thoughts := make([]string, 0, domain.MaxThoughtsPerCategory)
		seen := make(map[string]bool)
		for _, s := range extract.AsStrings(root[field]) {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			key := strings.ToLower(s)
			if seen[key] {
				found.add(field, "duplicate thought %q", s)
				continue
			}
			if len(thoughts) == domain.MaxThoughtsPerCategory {
				found.add(field, "more than %d thoughts", domain.MaxThoughtsPerCategory)
				break
			}
			seen[key] = true
			thoughts = append(thoughts, s)
		}
		if len(thoughts) == 0 {
			found.add(field, "no usable thoughts")
		}
		set.SetCategory(c, thoughts)
	}

	return Validation[domain.ThoughtSet]{Value: set, Gaps: found}
}

// NormalizeThoughts defaults every empty category.
func NormalizeThoughts(node extract.Node) domain.Result[domain.ThoughtSet] {
	set := ValidateThoughts(node).Value

	categories := domain.ThoughtCategories()
	defaulted := 0
	for _, c := range categories {
		if len(set.Category(c)) == 0 {
			set.SetCategory(c, fallback.Thoughts(c))
			defaulted++
		}
	}

	result := domain.NewResult(set)
	switch {
	case defaulted == 0:
		return result
	case defaulted == len(categories):
		return domain.MarkPartial(result, domain.SeverityWhole)
	default:
		return domain.MarkPartial(result, domain.SeverityItem)
	}
}

// ParseThoughts is the orchestrator parse function: at least one category must be an array.
func ParseThoughts(node extract.Node) (domain.Result[domain.ThoughtSet], bool) {
	root := thoughtsRoot(node)
	for _, c := range domain.ThoughtCategories() {
		if _, ok := root.Array(string(c)); ok {
			return NormalizeThoughts(node), true
		}
	}
	return domain.Result[domain.ThoughtSet]{}, false
}
