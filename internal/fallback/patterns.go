// Package fallback holds deterministic canned content for every domain.
//
// Each function is pure and total: it depends only on its identifying parameters (an index,
// a technique, a category) and returns a fresh, schema-complete value that is plausible for
// any journal entry.
package fallback

import "fmt"

type pattern struct {
	name     string
	reason   string
	analysis string
}

// patterns is the ten-pattern catalogue, indexed 1..10.
//
//nolint:gochecknoglobals // read-only catalogue
var patterns = [...]pattern{
	1: {
		name:     "All-or-nothing thinking",
		reason:   "Entries often sort outcomes into total success or total failure.",
		analysis: "Look for words like always, never, ruined or perfect. Ask what a partial success would look like here.",
	},
	2: {
		name:     "Overgeneralization",
		reason:   "A single event can start to feel like a pattern that defines everything.",
		analysis: "Notice whether one moment is being treated as proof of a rule. Count the times it did not happen.",
	},
	3: {
		name:     "Mental filter",
		reason:   "Attention may settle on one negative detail while the rest fades out.",
		analysis: "List what else happened in the same situation, including neutral and pleasant details.",
	},
	4: {
		name:     "Discounting the positive",
		reason:   "Good moments can be waved away as luck or as not counting.",
		analysis: "Check whether anything that went well was dismissed. Consider what you would say if a friend achieved it.",
	},
	5: {
		name:     "Mind reading",
		reason:   "It is common to assume what others think without asking them.",
		analysis: "Separate what was actually said or done from what you concluded about their thoughts.",
	},
	6: {
		name:     "Fortune telling",
		reason:   "Predictions about how things will go wrong can feel like facts.",
		analysis: "Write down the prediction and one other outcome that is at least as likely.",
	},
	7: {
		name:     "Catastrophizing",
		reason:   "Small setbacks can grow into worst-case stories.",
		analysis: "Rate how bad this would really be in a week and in a year. Plan one step for the most likely outcome.",
	},
	8: {
		name:     "Emotional reasoning",
		reason:   "Strong feelings can be read as evidence about how things are.",
		analysis: "Name the feeling, then ask what you would conclude from the facts alone.",
	},
	9: {
		name:     "Should statements",
		reason:   "Rigid rules about how you or others must act can add pressure.",
		analysis: "Rewrite each should as a preference: it would be nice if. Notice how the pressure changes.",
	},
	10: {
		name:     "Labeling",
		reason:   "A behavior can turn into a label for the whole person.",
		analysis: "Describe the specific action instead of the label, and one thing that does not fit the label.",
	},
}

// PatternCount is the size of the catalogue.
const PatternCount = len(patterns) - 1

// PatternName returns the catalogue name for index, or a generic name outside 1..10.
func PatternName(index int) string {
	if index < 1 || index > PatternCount {
		return fmt.Sprintf("Pattern %d", index)
	}
	return patterns[index].name
}
