package normalize

import (
	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/fallback"
)

const alternativesKey = "alternatives"

// ValidateAlternatives keeps the first well-formed thought per technique, in canonical
// technique order. A missing description is filled from the canonical one and is not a gap.
func ValidateAlternatives(node extract.Node) Validation[domain.AlternativeSet] {
	var found gaps

	entries, ok := node.Array(alternativesKey)
	if !ok {
		found.add(alternativesKey, "missing or not an array")
	}

	bySlot := make(map[domain.Technique]domain.AlternativeThought, len(domain.Techniques()))
	for i, entry := range entries {
		obj, isObject := extract.AsObject(entry)
		if !isObject {
			found.add(itemField(alternativesKey, i, ""), "not an object")
			continue
		}

		label, hasLabel := obj.String("technique")
		technique := domain.Technique(canonicalLabel(label))
		if !hasLabel || !technique.Valid() {
			found.add(itemField(alternativesKey, i, "technique"), "unknown technique %q", label)
			continue
		}
		if _, taken := bySlot[technique]; taken {
			found.add(itemField(alternativesKey, i, "technique"), "duplicate technique %s", technique)
			continue
		}

		thought, hasThought := obj.String("thought")
		if !hasThought {
			found.add(itemField(alternativesKey, i, "thought"), "missing or blank")
			continue
		}

		description, hasDescription := obj.String("techniqueDescription")
		if !hasDescription {
			description = fallback.TechniqueDescription(technique)
		}

		bySlot[technique] = domain.AlternativeThought{
			Thought:              thought,
			Technique:            technique,
			TechniqueDescription: description,
		}
	}

	items := make([]domain.AlternativeThought, 0, len(bySlot))
	for _, t := range domain.Techniques() {
		item, filled := bySlot[t]
		if !filled {
			found.add(alternativesKey, "no valid thought for %s", t)
			continue
		}
		items = append(items, item)
	}

	return Validation[domain.AlternativeSet]{Value: domain.AlternativeSet{Alternatives: items}, Gaps: found}
}

// NormalizeAlternatives fills every empty technique slot with its default thought.
func NormalizeAlternatives(node extract.Node) domain.Result[domain.AlternativeSet] {
	validation := ValidateAlternatives(node)

	bySlot := make(map[domain.Technique]domain.AlternativeThought, len(validation.Value.Alternatives))
	for _, item := range validation.Value.Alternatives {
		bySlot[item.Technique] = item
	}

	techniques := domain.Techniques()
	items := make([]domain.AlternativeThought, 0, len(techniques))
	defaulted := 0
	for _, t := range techniques {
		item, ok := bySlot[t]
		if !ok {
			item = fallback.Alternative(t)
			defaulted++
		}
		items = append(items, item)
	}

	result := domain.NewResult(domain.AlternativeSet{Alternatives: items})
	switch {
	case defaulted == 0:
		return result
	case defaulted == len(techniques):
		return domain.MarkPartial(result, domain.SeverityWhole)
	default:
		return domain.MarkPartial(result, domain.SeverityItem)
	}
}

// ParseAlternatives is the orchestrator parse function.
func ParseAlternatives(node extract.Node) (domain.Result[domain.AlternativeSet], bool) {
	if _, ok := node.Array(alternativesKey); !ok {
		return domain.Result[domain.AlternativeSet]{}, false
	}
	return NormalizeAlternatives(node), true
}
