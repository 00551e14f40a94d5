package fallback

import "github.com/davidbz/kiln/internal/domain"

// Scenario returns a minimal, generic scenario graph.
func Scenario() domain.ScenarioGraph {
	return domain.ScenarioGraph{
		Atoms: []domain.Atom{
			{ID: "a1", Type: domain.AtomEvent, Text: "Something happened that mattered to you."},
			{ID: "a2", Type: domain.AtomThought, Text: "A thought about what it meant came up."},
			{ID: "a3", Type: domain.AtomEmotion, Text: "A strong feeling followed."},
			{ID: "a4", Type: domain.AtomBehavior, Text: "You responded in the way that felt necessary."},
		},
		Sequence: []string{"a1", "a2", "a3", "a4"},
		Relations: []domain.Relation{
			{From: "a2", To: "a3", Label: "fuels"},
		},
	}
}
