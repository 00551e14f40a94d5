package normalize

import (
	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/fallback"
)

const detailsKey = "details"

// UniqueCandidates drops repeated candidates, keeping first occurrences.
func UniqueCandidates(candidates []int) []int {
	seen := make(map[int]bool, len(candidates))
	out := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ValidateDetails keeps the first well-formed entry per candidate index. Entries for
// indices outside candidates are gaps.
func ValidateDetails(node extract.Node, candidates []int) Validation[domain.DetailSet] {
	var found gaps
	candidates = UniqueCandidates(candidates)
	items := make([]domain.DetailItem, 0, len(candidates))

	allowed := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		allowed[c] = true
	}

	entries, ok := node.Array(detailsKey)
	if !ok {
		found.add(detailsKey, "missing or not an array")
		entries = nil
	}

	seen := make(map[int]bool, len(candidates))
	for i, entry := range entries {
		obj, isObject := extract.AsObject(entry)
		if !isObject {
			found.add(itemField(detailsKey, i, ""), "not an object")
			continue
		}

		index, hasIndex := obj.Int("index")
		if !hasIndex {
			found.add(itemField(detailsKey, i, "index"), "missing or not an integer")
			continue
		}
		if !allowed[index] {
			found.add(itemField(detailsKey, i, "index"), "%d is not a candidate", index)
			continue
		}
		if seen[index] {
			found.add(itemField(detailsKey, i, "index"), "duplicate index %d", index)
			continue
		}

		analysis, hasAnalysis := obj.String("analysis")
		if !hasAnalysis {
			found.add(itemField(detailsKey, i, "analysis"), "missing or blank")
			continue
		}

		seen[index] = true
		items = append(items, domain.DetailItem{Index: index, Analysis: analysis})
	}

	for _, c := range candidates {
		if !seen[c] {
			found.add(detailsKey, "no valid entry for candidate %d", c)
		}
	}

	return Validation[domain.DetailSet]{Value: domain.DetailSet{Details: items}, Gaps: found}
}

// NormalizeDetails repairs per candidate: every candidate without a valid entry gets its
// fallback analysis, and the output follows candidate order. Any repair marks the result
// partial; repairing every candidate marks it wholly partial.
func NormalizeDetails(node extract.Node, candidates []int) domain.Result[domain.DetailSet] {
	candidates = UniqueCandidates(candidates)
	validation := ValidateDetails(node, candidates)

	byIndex := make(map[int]domain.DetailItem, len(validation.Value.Details))
	for _, item := range validation.Value.Details {
		byIndex[item.Index] = item
	}

	items := make([]domain.DetailItem, 0, len(candidates))
	missing := 0
	for _, c := range candidates {
		item, ok := byIndex[c]
		if !ok {
			item = fallback.Detail(c)
			missing++
		}
		items = append(items, item)
	}

	result := domain.NewResult(domain.DetailSet{Details: items})
	switch {
	case missing == 0:
		return result
	case missing == len(candidates):
		return domain.MarkPartial(result, domain.SeverityWhole)
	default:
		return domain.MarkPartial(result, domain.SeverityItem)
	}
}

// ParseDetails returns the orchestrator parse function for candidates.
func ParseDetails(candidates []int) domain.ParseFunc[domain.Result[domain.DetailSet]] {
	return func(node extract.Node) (domain.Result[domain.DetailSet], bool) {
		if _, ok := node.Array(detailsKey); !ok {
			return domain.Result[domain.DetailSet]{}, false
		}
		return NormalizeDetails(node, candidates), true
	}
}
