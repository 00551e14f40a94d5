package domain

// Value objects produced by the normalizers. Their JSON form is the wire form the model is
// asked to produce, so a schema-complete value re-normalizes to itself.

// RankSize is the exact number of ranked items, indices 1..RankSize.
const RankSize = 10

// RankedItem is one entry of the pattern ranking.
type RankedItem struct {
	Index    int    `json:"index"`
	Reason   string `json:"reason"`
	Evidence string `json:"evidence,omitempty"`
}

// Ranking orders all ten thinking patterns by relevance to the entry.
type Ranking struct {
	Rankings []RankedItem `json:"rankings"`
}

// DetailItem analyses one candidate pattern.
type DetailItem struct {
	Index    int    `json:"index"`
	Analysis string `json:"analysis"`
}

// DetailSet holds exactly one item per candidate, in candidate order.
type DetailSet struct {
	Details []DetailItem `json:"details"`
}

// Technique is a reframing technique.
type Technique string

// Techniques in canonical order.
const (
	TechniqueEvidenceCheck        Technique = "evidence_check"
	TechniquePerspectiveShift     Technique = "perspective_shift"
	TechniqueCompassionateReframe Technique = "compassionate_reframe"
)

// Techniques returns all techniques in canonical order.
func Techniques() []Technique {
	return []Technique{
		TechniqueEvidenceCheck,
		TechniquePerspectiveShift,
		TechniqueCompassionateReframe,
	}
}

// Valid reports enum membership.
func (t Technique) Valid() bool {
	switch t {
	case TechniqueEvidenceCheck, TechniquePerspectiveShift, TechniqueCompassionateReframe:
		return true
	default:
		return false
	}
}

// AlternativeThought is a reframed version of the entry's thought.
type AlternativeThought struct {
	Thought              string    `json:"thought"`
	Technique            Technique `json:"technique"`
	TechniqueDescription string    `json:"techniqueDescription"`
}

// AlternativeSet holds one thought per technique, in canonical order.
type AlternativeSet struct {
	Alternatives []AlternativeThought `json:"alternatives"`
}

// Leaf array caps of StructuredContext.
const (
	MaxFacts      = 3
	MaxTriggers   = 2
	MaxEmotions   = 4
	MaxSensations = 3
	MaxUrges      = 2
	MaxBeliefs    = 3
	MaxNeeds      = 2
)

// StructuredContext breaks the entry down into capped lists of short strings.
type StructuredContext struct {
	Situation Situation `json:"situation"`
	Reaction  Reaction  `json:"reaction"`
	Meaning   Meaning   `json:"meaning"`
	Balance   [2]string `json:"balance"`
	Hint      string    `json:"hint"`
}

// Situation is what happened.
type Situation struct {
	Facts    []string `json:"facts"`
	Triggers []string `json:"triggers"`
}

// Reaction is how the writer responded.
type Reaction struct {
	Emotions   []string `json:"emotions"`
	Sensations []string `json:"sensations"`
	Urges      []string `json:"urges"`
}

// Meaning is what the situation meant to the writer.
type Meaning struct {
	Beliefs []string `json:"beliefs"`
	Needs   []string `json:"needs"`
}

// Scenario graph caps.
const (
	MaxAtoms     = 8
	MaxSequence  = 5
	MaxRelations = 1
	MaxAtomRunes = 160

	// MaxAtomIDRunes caps atom ids, which are also used as sequence and relation references.
	MaxAtomIDRunes = 32
)

// AtomType is one of the eight scenario atom kinds.
type AtomType string

// Atom types.
const (
	AtomEvent     AtomType = "event"
	AtomThought   AtomType = "thought"
	AtomEmotion   AtomType = "emotion"
	AtomSensation AtomType = "sensation"
	AtomBehavior  AtomType = "behavior"
	AtomBelief    AtomType = "belief"
	AtomNeed      AtomType = "need"
	AtomOutcome   AtomType = "outcome"
)

// AtomTypes returns the eight valid types.
func AtomTypes() []AtomType {
	return []AtomType{
		AtomEvent, AtomThought, AtomEmotion, AtomSensation,
		AtomBehavior, AtomBelief, AtomNeed, AtomOutcome,
	}
}

// Atom is a node of the scenario graph.
type Atom struct {
	ID   string   `json:"id"`
	Type AtomType `json:"type"`
	Text string   `json:"text"`
}

// Relation links two atoms.
type Relation struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// ScenarioGraph is the entry replayed as atoms, a sequence over them and at most one
// relation frame.
type ScenarioGraph struct {
	Atoms     []Atom     `json:"atoms"`
	Sequence  []string   `json:"sequence"`
	Relations []Relation `json:"relations"`
}

// ThoughtCategory names one list of the ThoughtSet.
type ThoughtCategory string

// Thought categories in canonical order.
const (
	ThoughtsAutomatic ThoughtCategory = "automatic"
	ThoughtsBalanced  ThoughtCategory = "balanced"
	ThoughtsCoping    ThoughtCategory = "coping"
)

// MaxThoughtsPerCategory caps every category list.
const MaxThoughtsPerCategory = 3

// ThoughtCategories returns the categories in canonical order.
func ThoughtCategories() []ThoughtCategory {
	return []ThoughtCategory{ThoughtsAutomatic, ThoughtsBalanced, ThoughtsCoping}
}

// ThoughtSet groups short thoughts by category.
type ThoughtSet struct {
	Automatic []string `json:"automatic"`
	Balanced  []string `json:"balanced"`
	Coping    []string `json:"coping"`
}

// Category returns the list for c.
func (s ThoughtSet) Category(c ThoughtCategory) []string {
	switch c {
	case ThoughtsAutomatic:
		return s.Automatic
	case ThoughtsBalanced:
		return s.Balanced
	case ThoughtsCoping:
		return s.Coping
	default:
		return nil
	}
}

// SetCategory replaces the list for c.
func (s *ThoughtSet) SetCategory(c ThoughtCategory, thoughts []string) {
	switch c {
	case ThoughtsAutomatic:
		s.Automatic = thoughts
	case ThoughtsBalanced:
		s.Balanced = thoughts
	case ThoughtsCoping:
		s.Coping = thoughts
	}
}
