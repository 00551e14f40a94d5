package normalize

import (
	"fmt"
	"strconv"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/fallback"
)

const (
	atomsKey     = "atoms"
	sequenceKey  = "sequence"
	relationsKey = "relations"

	defaultRelationLabel = "leads to"
)

// legacyAtomTypes maps labels older prompts produced onto the current atom types.
var legacyAtomTypes = map[string]domain.AtomType{
	"feeling":        domain.AtomEmotion,
	"body":           domain.AtomSensation,
	"action":         domain.AtomBehavior,
	"situation":      domain.AtomEvent,
	"trigger":        domain.AtomEvent,
	"assumption":     domain.AtomBelief,
	"rule":           domain.AtomBelief,
	"consequence":    domain.AtomOutcome,
	"result":         domain.AtomOutcome,
	"value":          domain.AtomNeed,
	"desire":         domain.AtomNeed,
	"cognition":      domain.AtomThought,
	"interpretation": domain.AtomThought,
}

// AtomTypeOf resolves a raw type label, including legacy labels.
func AtomTypeOf(label string) (domain.AtomType, bool) {
	label = canonicalLabel(label)
	for _, t := range domain.AtomTypes() {
		if string(t) == label {
			return t, true
		}
	}
	t, ok := legacyAtomTypes[label]
	return t, ok
}

// ValidateScenario keeps atoms with a resolvable type and non-blank text, then filters the
// sequence and relations down to references between surviving atoms.
func ValidateScenario(node extract.Node) Validation[domain.ScenarioGraph] {
	var found gaps

	atoms := scenarioAtoms(node, &found)
	known := make(map[string]bool, len(atoms))
	for _, a := range atoms {
		known[a.ID] = true
	}

	return Validation[domain.ScenarioGraph]{
		Value: domain.ScenarioGraph{
			Atoms:     atoms,
			Sequence:  scenarioSequence(node, known, &found),
			Relations: scenarioRelations(node, known, &found),
		},
		Gaps: found,
	}
}

// NormalizeScenario replaces the whole graph with the fallback scenario when no atom
// survives validation. Dropped sequence entries or relations do not degrade the result.
func NormalizeScenario(node extract.Node) domain.Result[domain.ScenarioGraph] {
	validation := ValidateScenario(node)
	if len(validation.Value.Atoms) == 0 {
		return domain.MarkPartial(domain.NewResult(fallback.Scenario()), domain.SeverityWhole)
	}
	return domain.NewResult(validation.Value)
}

// ParseScenario is the orchestrator parse function.
func ParseScenario(node extract.Node) (domain.Result[domain.ScenarioGraph], bool) {
	if _, ok := node.Array(atomsKey); !ok {
		return domain.Result[domain.ScenarioGraph]{}, false
	}
	return NormalizeScenario(node), true
}

func scenarioAtoms(node extract.Node, found *gaps) []domain.Atom {
	atoms := make([]domain.Atom, 0, domain.MaxAtoms)

	entries, ok := node.Array(atomsKey)
	if !ok {
		found.add(atomsKey, "missing or not an array")
		return atoms
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		obj, isObject := extract.AsObject(entry)
		if !isObject {
			found.add(itemField(atomsKey, i, ""), "not an object")
			continue
		}

		id, hasID := atomID(obj["id"])
		if !hasID {
			id = fmt.Sprintf("a%d", i+1)
		}
		if seen[id] {
			found.add(itemField(atomsKey, i, "id"), "duplicate id %q", id)
			continue
		}

		label, _ := obj.String("type")
		atomType, known := AtomTypeOf(label)
		if !known {
			found.add(itemField(atomsKey, i, "type"), "unknown type %q", label)
			continue
		}

		text, hasText := obj.String("text")
		if !hasText {
			found.add(itemField(atomsKey, i, "text"), "missing or blank")
			continue
		}
		text = truncateRunes(collapse(text), domain.MaxAtomRunes)

		if len(atoms) == domain.MaxAtoms {
			found.add(atomsKey, "more than %d atoms", domain.MaxAtoms)
			break
		}

		seen[id] = true
		atoms = append(atoms, domain.Atom{ID: id, Type: atomType, Text: text})
	}

	return atoms
}

func scenarioSequence(node extract.Node, known map[string]bool, found *gaps) []string {
	sequence := make([]string, 0, domain.MaxSequence)

	entries, ok := node.Array(sequenceKey)
	if !ok {
		found.add(sequenceKey, "missing or not an array")
		return sequence
	}

	for i, entry := range entries {
		id, hasID := atomID(entry)
		if !hasID || !known[id] {
			found.add(itemField(sequenceKey, i, ""), "unknown atom reference")
			continue
		}
		if len(sequence) == domain.MaxSequence {
			found.add(sequenceKey, "more than %d steps", domain.MaxSequence)
			break
		}
		sequence = append(sequence, id)
	}

	return sequence
}

func scenarioRelations(node extract.Node, known map[string]bool, found *gaps) []domain.Relation {
	relations := make([]domain.Relation, 0, domain.MaxRelations)

	entries, ok := node.Array(relationsKey)
	if !ok {
		if single, isObject := node.Object("relation"); isObject {
			entries = []any{map[string]any(single)}
		}
	}

	for i, entry := range entries {
		obj, isObject := extract.AsObject(entry)
		if !isObject {
			found.add(itemField(relationsKey, i, ""), "not an object")
			continue
		}

		from, hasFrom := atomID(obj["from"])
		to, hasTo := atomID(obj["to"])
		if !hasFrom || !hasTo || !known[from] || !known[to] {
			found.add(itemField(relationsKey, i, ""), "endpoint does not reference a surviving atom")
			continue
		}

		label, hasLabel := obj.String("label")
		if !hasLabel {
			label = defaultRelationLabel
		}

		if len(relations) == domain.MaxRelations {
			found.add(relationsKey, "more than %d relations", domain.MaxRelations)
			break
		}
		relations = append(relations, domain.Relation{
			From:  from,
			To:    to,
			Label: truncateRunes(collapse(label), domain.MaxAtomRunes),
		})
	}

	return relations
}

// atomID accepts string ids and integral numeric ids. String ids are collapsed and capped
// the same way wherever they appear, so references still match their atom.
func atomID(v any) (string, bool) {
	if s, ok := extract.AsString(v); ok {
		s = truncateRunes(collapse(s), domain.MaxAtomIDRunes)
		return s, s != ""
	}
	if f, ok := v.(float64); ok {
		if n, integral := extract.AsInt(f); integral {
			return strconv.Itoa(n), true
		}
	}
	return "", false
}
