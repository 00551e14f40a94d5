package normalize

import (
	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/fallback"
)

const rankingsKey = "rankings"

// ValidateRanking keeps every well-formed entry with an index in 1..10 that has not been
// seen before, in input order.
func ValidateRanking(node extract.Node) Validation[domain.Ranking] {
	var found gaps
	items := make([]domain.RankedItem, 0, domain.RankSize)

	entries, ok := node.Array(rankingsKey)
	if !ok {
		found.add(rankingsKey, "missing or not an array")
		return Validation[domain.Ranking]{Value: domain.Ranking{Rankings: items}, Gaps: found}
	}

	seen := make(map[int]bool, domain.RankSize)
	for i, entry := range entries {
		obj, isObject := extract.AsObject(entry)
		if !isObject {
			found.add(itemField(rankingsKey, i, ""), "not an object")
			continue
		}

		index, hasIndex := obj.Int("index")
		if !hasIndex {
			found.add(itemField(rankingsKey, i, "index"), "missing or not an integer")
			continue
		}
		if index < 1 || index > domain.RankSize {
			found.add(itemField(rankingsKey, i, "index"), "%d out of range 1..%d", index, domain.RankSize)
			continue
		}
		if seen[index] {
			found.add(itemField(rankingsKey, i, "index"), "duplicate index %d", index)
			continue
		}

		reason, hasReason := obj.String("reason")
		if !hasReason {
			found.add(itemField(rankingsKey, i, "reason"), "missing or blank")
			continue
		}

		evidence, _ := obj.String("evidence")

		seen[index] = true
		items = append(items, domain.RankedItem{Index: index, Reason: reason, Evidence: evidence})
	}

	if len(items) != domain.RankSize {
		found.add(rankingsKey, "%d valid unique entries, want %d", len(items), domain.RankSize)
	}

	return Validation[domain.Ranking]{Value: domain.Ranking{Rankings: items}, Gaps: found}
}

// NormalizeRanking is all-or-nothing: the model's ranking is used only when it covers
// indices 1..10 exactly once; otherwise the whole default ranking replaces it.
// Per-item gaps that were discarded (for example a duplicate after a complete set) do not
// degrade a complete ranking.
func NormalizeRanking(node extract.Node) domain.Result[domain.Ranking] {
	validation := ValidateRanking(node)
	if len(validation.Value.Rankings) == domain.RankSize {
		return domain.NewResult(validation.Value)
	}
	return domain.MarkPartial(domain.NewResult(fallback.Ranking()), domain.SeverityWhole)
}

// ParseRanking is the orchestrator parse function: it accepts any object carrying a
// rankings array.
func ParseRanking(node extract.Node) (domain.Result[domain.Ranking], bool) {
	if _, ok := node.Array(rankingsKey); !ok {
		return domain.Result[domain.Ranking]{}, false
	}
	return NormalizeRanking(node), true
}
