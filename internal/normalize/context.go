package normalize

import (
	"strings"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/fallback"
)

type contextLeaf struct {
	path  string
	limit int
}

var contextLeaves = []contextLeaf{
	{fallback.LeafFacts, domain.MaxFacts},
	{fallback.LeafTriggers, domain.MaxTriggers},
	{fallback.LeafEmotions, domain.MaxEmotions},
	{fallback.LeafSensations, domain.MaxSensations},
	{fallback.LeafUrges, domain.MaxUrges},
	{fallback.LeafBeliefs, domain.MaxBeliefs},
	{fallback.LeafNeeds, domain.MaxNeeds},
}

// ValidateContext reads every leaf array and the balance and hint fields. Leaves are
// truncated to their cap in literal order before blanks are dropped, so a blank within the
// cap leaves the leaf shorter than the cap.
func ValidateContext(node extract.Node) Validation[domain.StructuredContext] {
	var found gaps
	var sc domain.StructuredContext

	for _, leaf := range contextLeaves {
		values := leafValues(node, leaf, &found)
		setContextLeaf(&sc, leaf.path, values)
	}

	// Slots are positional: a non-string entry leaves its own slot empty.
	balance, isArray := node.Array("balance")
	if !isArray {
		found.add("balance", "missing or not an array")
	}
	for slot := range sc.Balance {
		if slot < len(balance) {
			sc.Balance[slot], _ = extract.AsString(balance[slot])
		}
		if sc.Balance[slot] == "" {
			found.add(itemField("balance", slot, ""), "missing or blank")
		}
	}

	hint, ok := node.String("hint")
	if !ok {
		found.add("hint", "missing or blank")
	}
	sc.Hint = hint

	return Validation[domain.StructuredContext]{Value: sc, Gaps: found}
}

// NormalizeContext substitutes each empty leaf, balance slot and the hint individually.
// Context substitutions never mark the result partial.
func NormalizeContext(node extract.Node) domain.Result[domain.StructuredContext] {
	sc := ValidateContext(node).Value

	for _, leaf := range contextLeaves {
		if len(contextLeafValues(sc, leaf.path)) == 0 {
			setContextLeaf(&sc, leaf.path, fallback.ContextLeaf(leaf.path))
		}
	}
	for slot := range sc.Balance {
		if sc.Balance[slot] == "" {
			sc.Balance[slot] = fallback.BalanceSlot(slot)
		}
	}
	if sc.Hint == "" {
		sc.Hint = fallback.ContextHint()
	}

	return domain.NewResult(sc)
}

// ParseContext is the orchestrator parse function. Any object is accepted: missing
// sections are filled leaf by leaf.
func ParseContext(node extract.Node) (domain.Result[domain.StructuredContext], bool) {
	if node == nil {
		return domain.Result[domain.StructuredContext]{}, false
	}
	return NormalizeContext(node), true
}

func leafValues(node extract.Node, leaf contextLeaf, found *gaps) []string {
	section, field, _ := strings.Cut(leaf.path, ".")

	obj, ok := node.Object(section)
	if !ok {
		found.add(leaf.path, "section %s missing or not an object", section)
		return make([]string, 0)
	}
	raw, isArray := obj.Array(field)
	if !isArray {
		found.add(leaf.path, "missing or not an array")
		return make([]string, 0)
	}

	if len(raw) > leaf.limit {
		found.add(leaf.path, "%d entries, capped at %d", len(raw), leaf.limit)
		raw = raw[:leaf.limit]
	}

	values := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := extract.AsString(entry); ok {
			values = append(values, s)
		}
	}
	if len(values) == 0 {
		found.add(leaf.path, "no usable entries")
	}
	return values
}

func contextLeafValues(sc domain.StructuredContext, path string) []string {
	switch path {
	case fallback.LeafFacts:
		return sc.Situation.Facts
	case fallback.LeafTriggers:
		return sc.Situation.Triggers
	case fallback.LeafEmotions:
		return sc.Reaction.Emotions
	case fallback.LeafSensations:
		return sc.Reaction.Sensations
	case fallback.LeafUrges:
		return sc.Reaction.Urges
	case fallback.LeafBeliefs:
		return sc.Meaning.Beliefs
	case fallback.LeafNeeds:
		return sc.Meaning.Needs
	default:
		return nil
	}
}

func setContextLeaf(sc *domain.StructuredContext, path string, values []string) {
	switch path {
	case fallback.LeafFacts:
		sc.Situation.Facts = values
	case fallback.LeafTriggers:
		sc.Situation.Triggers = values
	case fallback.LeafEmotions:
		sc.Reaction.Emotions = values
	case fallback.LeafSensations:
		sc.Reaction.Sensations = values
	case fallback.LeafUrges:
		sc.Reaction.Urges = values
	case fallback.LeafBeliefs:
		sc.Meaning.Beliefs = values
	case fallback.LeafNeeds:
		sc.Meaning.Needs = values
	}
}
