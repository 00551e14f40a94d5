package fallback

import "github.com/davidbz/kiln/internal/domain"

// Context leaf paths.
const (
	LeafFacts      = "situation.facts"
	LeafTriggers   = "situation.triggers"
	LeafEmotions   = "reaction.emotions"
	LeafSensations = "reaction.sensations"
	LeafUrges      = "reaction.urges"
	LeafBeliefs    = "meaning.beliefs"
	LeafNeeds      = "meaning.needs"
)

// ContextLeaf returns the static fallback for one leaf array.
func ContextLeaf(path string) []string {
	switch path {
	case LeafFacts:
		return []string{"Something happened that stayed with you."}
	case LeafTriggers:
		return []string{"A moment that felt important"}
	case LeafEmotions:
		return []string{"Unsettled"}
	case LeafSensations:
		return []string{"Tension"}
	case LeafUrges:
		return []string{"To make the feeling stop"}
	case LeafBeliefs:
		return []string{"This matters to me."}
	case LeafNeeds:
		return []string{"Reassurance"}
	default:
		return []string{"Not specified"}
	}
}

// BalanceSlot returns the fallback for one slot of the balance tuple.
func BalanceSlot(slot int) string {
	if slot == 0 {
		return "Part of me sees this as a real problem."
	}
	return "Part of me knows there may be more to the story."
}

// ContextHint is the fallback hint.
func ContextHint() string {
	return "Start with what happened, then notice what you told yourself about it."
}

// Context returns a fully fallback structured context.
func Context() domain.StructuredContext {
	return domain.StructuredContext{
		Situation: domain.Situation{
			Facts:    ContextLeaf(LeafFacts),
			Triggers: ContextLeaf(LeafTriggers),
		},
		Reaction: domain.Reaction{
			Emotions:   ContextLeaf(LeafEmotions),
			Sensations: ContextLeaf(LeafSensations),
			Urges:      ContextLeaf(LeafUrges),
		},
		Meaning: domain.Meaning{
			Beliefs: ContextLeaf(LeafBeliefs),
			Needs:   ContextLeaf(LeafNeeds),
		},
		Balance: [2]string{BalanceSlot(0), BalanceSlot(1)},
		Hint:    ContextHint(),
	}
}
