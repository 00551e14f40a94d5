package normalize_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/fallback"
	"github.com/davidbz/kiln/internal/normalize"
)

func parseNode(t *testing.T, raw string) extract.Node {
	t.Helper()
	node, ok := extract.Parse(raw)
	require.True(t, ok, "fixture must parse: %s", raw)
	return node
}

// toNode re-encodes a normalized value the way a model would return it.
func toNode(t *testing.T, v any) extract.Node {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return parseNode(t, string(data))
}

func fullRanking(order []int) string {
	items := make([]string, 0, len(order))
	for _, i := range order {
		items = append(items, fmt.Sprintf(`{"index":%d,"reason":"reason %d"}`, i, i))
	}
	return `{"rankings":[` + strings.Join(items, ",") + `]}`
}

func TestNormalizeRanking_KeepsCompleteRanking(t *testing.T) {
	order := []int{3, 1, 2, 4, 5, 6, 7, 8, 9, 10}
	result := normalize.NormalizeRanking(parseNode(t, fullRanking(order)))

	require.False(t, result.Partial())
	require.Len(t, result.Value.Rankings, domain.RankSize)
	for i, item := range result.Value.Rankings {
		require.Equal(t, order[i], item.Index)
		require.Equal(t, fmt.Sprintf("reason %d", order[i]), item.Reason)
	}
}

func TestNormalizeRanking_AllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "nine entries", raw: fullRanking([]int{1, 2, 3, 4, 5, 6, 7, 8, 9})},
		{name: "duplicate index", raw: fullRanking([]int{1, 1, 2, 3, 4, 5, 6, 7, 8, 9})},
		{name: "out of range", raw: fullRanking([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})},
		{name: "not an array", raw: `{"rankings":"none"}`},
		{name: "missing key", raw: `{"other":[]}`},
		{name: "blank reason", raw: strings.Replace(fullRanking([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}), `"reason 4"`, `"  "`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalize.NormalizeRanking(parseNode(t, tt.raw))

			require.True(t, result.Partial())
			require.Equal(t, domain.SeverityWhole, result.Severity())
			require.Empty(t, cmp.Diff(fallback.Ranking(), result.Value))
		})
	}
}

func TestValidateRanking_ReportsGaps(t *testing.T) {
	validation := normalize.ValidateRanking(parseNode(t, fullRanking([]int{1, 2, 2, 11})))

	require.False(t, validation.OK())
	require.Len(t, validation.Value.Rankings, 2)
	require.Len(t, validation.Gaps, 3)
	require.Equal(t, "rankings[2].index", validation.Gaps[0].Field)
}

func TestNormalizeRanking_FencedCompletion(t *testing.T) {
	raw := "Here is my ranking:\n```json\n" + fullRanking([]int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}) + "\n```\nLet me know."

	node, ok := extract.Parse(raw)
	require.True(t, ok)

	result, ok := normalize.ParseRanking(node)
	require.True(t, ok)
	require.False(t, result.Partial())
	require.Equal(t, 10, result.Value.Rankings[0].Index)
	require.Equal(t, 1, result.Value.Rankings[9].Index)
}

func TestParseRanking_RejectsWrongShape(t *testing.T) {
	_, ok := normalize.ParseRanking(parseNode(t, `{"ranking":[]}`))
	require.False(t, ok)
}

func TestNormalizeDetails_RepairsMissingCandidates(t *testing.T) {
	raw := `{"details":[{"index":5,"analysis":"genuine five"},{"index":7,"analysis":"not asked"}]}`

	result := normalize.NormalizeDetails(parseNode(t, raw), []int{2, 5, 9})

	require.True(t, result.Partial())
	require.Equal(t, domain.SeverityItem, result.Severity())

	want := domain.DetailSet{Details: []domain.DetailItem{
		fallback.Detail(2),
		{Index: 5, Analysis: "genuine five"},
		fallback.Detail(9),
	}}
	require.Empty(t, cmp.Diff(want, result.Value))
}

func TestNormalizeDetails_Severity(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		candidates []int
		severity   domain.Severity
		length     int
	}{
		{
			name:       "all present",
			raw:        `{"details":[{"index":1,"analysis":"a"},{"index":2,"analysis":"b"}]}`,
			candidates: []int{1, 2},
			severity:   domain.SeverityNone,
			length:     2,
		},
		{
			name:       "none valid",
			raw:        `{"details":[{"index":1,"analysis":""}]}`,
			candidates: []int{1, 2},
			severity:   domain.SeverityWhole,
			length:     2,
		},
		{
			name:       "duplicate candidates collapse",
			raw:        `{"details":[{"index":4,"analysis":"first"},{"index":4,"analysis":"second"}]}`,
			candidates: []int{4, 4},
			severity:   domain.SeverityNone,
			length:     1,
		},
		{
			name:       "empty candidates",
			raw:        `{"details":[]}`,
			candidates: nil,
			severity:   domain.SeverityNone,
			length:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalize.NormalizeDetails(parseNode(t, tt.raw), tt.candidates)

			require.Equal(t, tt.severity, result.Severity())
			require.Len(t, result.Value.Details, tt.length)
			require.NotNil(t, result.Value.Details)
		})
	}
}

func TestNormalizeDetails_FirstOccurrenceWins(t *testing.T) {
	raw := `{"details":[{"index":4,"analysis":"first"},{"index":4,"analysis":"second"}]}`

	result := normalize.NormalizeDetails(parseNode(t, raw), []int{4})

	require.Equal(t, "first", result.Value.Details[0].Analysis)
}

func TestNormalizeAlternatives_FirstWinsCanonicalOrder(t *testing.T) {
	raw := `{"alternatives":[
		{"thought":"kind one","technique":"Compassionate Reframe","techniqueDescription":"be kind"},
		{"thought":"facts one","technique":"evidence_check","techniqueDescription":"weigh it"},
		{"thought":"facts two","technique":"evidence-check","techniqueDescription":"ignored"},
		{"thought":"wide one","technique":"perspective_shift"}
	]}`

	result := normalize.NormalizeAlternatives(parseNode(t, raw))

	require.False(t, result.Partial())
	want := domain.AlternativeSet{Alternatives: []domain.AlternativeThought{
		{Thought: "facts one", Technique: domain.TechniqueEvidenceCheck, TechniqueDescription: "weigh it"},
		{
			Thought:              "wide one",
			Technique:            domain.TechniquePerspectiveShift,
			TechniqueDescription: fallback.TechniqueDescription(domain.TechniquePerspectiveShift),
		},
		{Thought: "kind one", Technique: domain.TechniqueCompassionateReframe, TechniqueDescription: "be kind"},
	}}
	require.Empty(t, cmp.Diff(want, result.Value))
}

func TestNormalizeAlternatives_DefaultsSlots(t *testing.T) {
	raw := `{"alternatives":[{"thought":"facts","technique":"evidence_check"},{"thought":"x","technique":"magic"}]}`

	result := normalize.NormalizeAlternatives(parseNode(t, raw))

	require.Equal(t, domain.SeverityItem, result.Severity())
	require.Equal(t, fallback.Alternative(domain.TechniquePerspectiveShift), result.Value.Alternatives[1])
	require.Equal(t, fallback.Alternative(domain.TechniqueCompassionateReframe), result.Value.Alternatives[2])

	empty := normalize.NormalizeAlternatives(parseNode(t, `{"alternatives":[]}`))
	require.Equal(t, domain.SeverityWhole, empty.Severity())
	require.Empty(t, cmp.Diff(fallback.Alternatives(), empty.Value))
}

func TestNormalizeContext_LeafDefaulting(t *testing.T) {
	raw := `{
		"situation": {"facts": ["", "missed the bus", "late", "ignored"], "triggers": []},
		"reaction": {"emotions": ["  anxious  ", 3, "tired"], "sensations": "tight chest"},
		"balance": ["I was late", "  "]
	}`

	result := normalize.NormalizeContext(parseNode(t, raw))
	sc := result.Value

	require.False(t, result.Partial())
	require.Equal(t, []string{"missed the bus", "late"}, sc.Situation.Facts)
	require.Equal(t, fallback.ContextLeaf(fallback.LeafTriggers), sc.Situation.Triggers)
	require.Equal(t, []string{"anxious", "tired"}, sc.Reaction.Emotions)
	require.Equal(t, fallback.ContextLeaf(fallback.LeafSensations), sc.Reaction.Sensations)
	require.Equal(t, fallback.ContextLeaf(fallback.LeafBeliefs), sc.Meaning.Beliefs)
	require.Equal(t, "I was late", sc.Balance[0])
	require.Equal(t, fallback.BalanceSlot(1), sc.Balance[1])
	require.Equal(t, fallback.ContextHint(), sc.Hint)
}

func TestNormalizeContext_PositionalEntries(t *testing.T) {
	raw := `{
		"situation": {"triggers": [null, 5, "the bus left"]},
		"balance": [null, "I have caught it every other day"]
	}`

	sc := normalize.NormalizeContext(parseNode(t, raw)).Value

	require.Equal(t, fallback.ContextLeaf(fallback.LeafTriggers), sc.Situation.Triggers)
	require.Equal(t, fallback.BalanceSlot(0), sc.Balance[0])
	require.Equal(t, "I have caught it every other day", sc.Balance[1])
}

func TestNormalizeContext_EmptyObjectIsFullFallbackButNotPartial(t *testing.T) {
	result := normalize.NormalizeContext(parseNode(t, `{}`))

	require.False(t, result.Partial())
	require.Empty(t, cmp.Diff(fallback.Context(), result.Value))

	validation := normalize.ValidateContext(parseNode(t, `{}`))
	require.NotEmpty(t, validation.Gaps)
}

func TestNormalizeScenario(t *testing.T) {
	long := strings.Repeat("word ", 60)
	raw := `{
		"atoms": [
			{"id":"a1","type":"situation","text":"  missed   the bus "},
			{"id":"a2","type":"Feeling","text":"panic"},
			{"id":"a2","type":"thought","text":"duplicate id"},
			{"type":"unknown","text":"dropped"},
			{"id":7,"type":"thought","text":"` + long + `"},
			{"type":"outcome","text":"late again"}
		],
		"sequence": ["a1", "ghost", 7, "a2", "a6"],
		"relation": {"from":"7","to":"a2","label":" "}
	}`

	result := normalize.NormalizeScenario(parseNode(t, raw))
	graph := result.Value

	require.False(t, result.Partial())
	require.Len(t, graph.Atoms, 4)
	require.Equal(t, domain.Atom{ID: "a1", Type: domain.AtomEvent, Text: "missed the bus"}, graph.Atoms[0])
	require.Equal(t, domain.AtomEmotion, graph.Atoms[1].Type)
	require.Equal(t, "7", graph.Atoms[2].ID)
	require.LessOrEqual(t, len([]rune(graph.Atoms[2].Text)), domain.MaxAtomRunes)
	require.Equal(t, "a6", graph.Atoms[3].ID)
	require.Equal(t, []string{"a1", "7", "a2", "a6"}, graph.Sequence)
	require.Equal(t, []domain.Relation{{From: "7", To: "a2", Label: "leads to"}}, graph.Relations)
}

func TestNormalizeScenario_Caps(t *testing.T) {
	atoms := make([]string, 0, 10)
	ids := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		atoms = append(atoms, fmt.Sprintf(`{"id":"n%d","type":"event","text":"step %d"}`, i, i))
		ids = append(ids, fmt.Sprintf(`"n%d"`, i))
	}
	raw := fmt.Sprintf(`{"atoms":[%s],"sequence":[%s],"relations":[{"from":"n1","to":"n2","label":"then"},{"from":"n2","to":"n3","label":"then"}]}`,
		strings.Join(atoms, ","), strings.Join(ids, ","))

	graph := normalize.NormalizeScenario(parseNode(t, raw)).Value

	require.Len(t, graph.Atoms, domain.MaxAtoms)
	require.Len(t, graph.Sequence, domain.MaxSequence)
	require.Len(t, graph.Relations, domain.MaxRelations)
}

func TestNormalizeScenario_CapsFreeTextFields(t *testing.T) {
	longID := strings.Repeat("x", 1000)
	longLabel := strings.Repeat("because ", 125)
	raw := fmt.Sprintf(`{
		"atoms": [
			{"id":%q,"type":"event","text":"missed the bus"},
			{"id":"b","type":"emotion","text":"panic"}
		],
		"sequence": [%q, "b"],
		"relations": [{"from":%q,"to":"b","label":%q}]
	}`, longID, longID, longID, longLabel)

	graph := normalize.NormalizeScenario(parseNode(t, raw)).Value

	cappedID := strings.Repeat("x", domain.MaxAtomIDRunes)
	require.Len(t, graph.Atoms, 2)
	require.Equal(t, cappedID, graph.Atoms[0].ID)
	require.Equal(t, []string{cappedID, "b"}, graph.Sequence)
	require.Len(t, graph.Relations, 1)
	require.Equal(t, cappedID, graph.Relations[0].From)
	require.LessOrEqual(t, len([]rune(graph.Relations[0].Label)), domain.MaxAtomRunes)
	require.True(t, strings.HasPrefix(graph.Relations[0].Label, "because because"))
}

func TestNormalizeScenario_NoSurvivingAtoms(t *testing.T) {
	result := normalize.NormalizeScenario(parseNode(t, `{"atoms":[{"type":"mystery","text":"x"}],"sequence":["a1"]}`))

	require.Equal(t, domain.SeverityWhole, result.Severity())
	require.Empty(t, cmp.Diff(fallback.Scenario(), result.Value))
}

func TestAtomTypeOf(t *testing.T) {
	tests := map[string]domain.AtomType{
		"event":          domain.AtomEvent,
		"Body":           domain.AtomSensation,
		"interpretation": domain.AtomThought,
		"rule":           domain.AtomBelief,
		"desire":         domain.AtomNeed,
		"result":         domain.AtomOutcome,
	}
	for label, want := range tests {
		got, ok := normalize.AtomTypeOf(label)
		require.True(t, ok, label)
		require.Equal(t, want, got, label)
	}

	_, ok := normalize.AtomTypeOf("vibe")
	require.False(t, ok)
}

func TestNormalizeThoughts(t *testing.T) {
	raw := `{"automatic":[" I failed ","i failed","", "nobody cares","it's hopeless","extra"],"balanced":[],"coping":"breathe"}`

	result := normalize.NormalizeThoughts(parseNode(t, raw))

	require.Equal(t, domain.SeverityItem, result.Severity())
	require.Equal(t, []string{"I failed", "nobody cares", "it's hopeless"}, result.Value.Automatic)
	require.Equal(t, fallback.Thoughts(domain.ThoughtsBalanced), result.Value.Balanced)
	require.Equal(t, fallback.Thoughts(domain.ThoughtsCoping), result.Value.Coping)
}

func TestParseThoughts_AcceptsNestedForm(t *testing.T) {
	raw := `{"thoughts":{"automatic":["a"],"balanced":["b"],"coping":["c"]}}`

	result, ok := normalize.ParseThoughts(parseNode(t, raw))

	require.True(t, ok)
	require.False(t, result.Partial())
	require.Equal(t, domain.ThoughtSet{Automatic: []string{"a"}, Balanced: []string{"b"}, Coping: []string{"c"}}, result.Value)

	_, ok = normalize.ParseThoughts(parseNode(t, `{"ideas":[]}`))
	require.False(t, ok)
}

// Normalized values are schema-complete, so normalizing their wire form again yields the
// same value with no partial marker.
func TestNormalize_Idempotent(t *testing.T) {
	t.Run("rank", func(t *testing.T) {
		first := normalize.NormalizeRanking(parseNode(t, `{}`))
		second := normalize.NormalizeRanking(toNode(t, first))
		require.False(t, second.Partial())
		require.Empty(t, cmp.Diff(first.Value, second.Value))
	})

	t.Run("detail", func(t *testing.T) {
		candidates := []int{3, 8}
		first := normalize.NormalizeDetails(parseNode(t, `{"details":[{"index":3,"analysis":"x"}]}`), candidates)
		second := normalize.NormalizeDetails(toNode(t, first), candidates)
		require.False(t, second.Partial())
		require.Empty(t, cmp.Diff(first.Value, second.Value))
	})

	t.Run("alternatives", func(t *testing.T) {
		first := normalize.NormalizeAlternatives(parseNode(t, `{"alternatives":[{"thought":"t","technique":"perspective shift"}]}`))
		second := normalize.NormalizeAlternatives(toNode(t, first))
		require.False(t, second.Partial())
		require.Empty(t, cmp.Diff(first.Value, second.Value))
	})

	t.Run("context", func(t *testing.T) {
		first := normalize.NormalizeContext(parseNode(t, `{"situation":{"facts":["a","b","c","d"]}}`))
		second := normalize.NormalizeContext(toNode(t, first))
		require.Empty(t, cmp.Diff(first.Value, second.Value))
		require.True(t, normalize.ValidateContext(toNode(t, first)).OK())
	})

	t.Run("scenario", func(t *testing.T) {
		first := normalize.NormalizeScenario(parseNode(t, `{"atoms":[{"type":"feeling","text":"  sad  "}],"sequence":["a1"]}`))
		second := normalize.NormalizeScenario(toNode(t, first))
		require.False(t, second.Partial())
		require.Empty(t, cmp.Diff(first.Value, second.Value))
	})

	t.Run("thoughts", func(t *testing.T) {
		first := normalize.NormalizeThoughts(parseNode(t, `{"automatic":["x","X"]}`))
		second := normalize.NormalizeThoughts(toNode(t, first))
		require.False(t, second.Partial())
		require.Empty(t, cmp.Diff(first.Value, second.Value))
	})
}
