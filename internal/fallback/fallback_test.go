package fallback_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/fallback"
)

func TestRanking(t *testing.T) {
	ranking := fallback.Ranking()

	require.Len(t, ranking.Rankings, domain.RankSize)
	for i, item := range ranking.Rankings {
		require.Equal(t, i+1, item.Index)
		require.NotEmpty(t, item.Reason)
	}
}

func TestRanking_ReturnsFreshCopies(t *testing.T) {
	first := fallback.Ranking()
	first.Rankings[0].Reason = "mutated"

	second := fallback.Ranking()
	require.NotEqual(t, "mutated", second.Rankings[0].Reason)
}

func TestDetailAnalysis(t *testing.T) {
	t.Run("catalogue indices name the pattern", func(t *testing.T) {
		require.Contains(t, fallback.DetailAnalysis(7), "Catastrophizing")
	})

	t.Run("is total outside the catalogue", func(t *testing.T) {
		for _, index := range []int{-1, 0, 11, 1000} {
			require.NotEmpty(t, fallback.DetailAnalysis(index))
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		require.Equal(t, fallback.DetailAnalysis(3), fallback.DetailAnalysis(3))
		require.NotEqual(t, fallback.DetailAnalysis(3), fallback.DetailAnalysis(4))
	})

	t.Run("Details keeps candidate order", func(t *testing.T) {
		set := fallback.Details([]int{9, 2, 5})
		require.Equal(t, []int{9, 2, 5}, []int{set.Details[0].Index, set.Details[1].Index, set.Details[2].Index})
	})
}

func TestAlternatives(t *testing.T) {
	set := fallback.Alternatives()

	require.Len(t, set.Alternatives, 3)
	for i, technique := range domain.Techniques() {
		alt := set.Alternatives[i]
		require.Equal(t, technique, alt.Technique)
		require.NotEmpty(t, alt.Thought)
		require.Equal(t, fallback.TechniqueDescription(technique), alt.TechniqueDescription)
	}
}

func TestContext(t *testing.T) {
	ctx := fallback.Context()

	leaves := [][]string{
		ctx.Situation.Facts, ctx.Situation.Triggers,
		ctx.Reaction.Emotions, ctx.Reaction.Sensations, ctx.Reaction.Urges,
		ctx.Meaning.Beliefs, ctx.Meaning.Needs,
	}
	for _, leaf := range leaves {
		require.NotEmpty(t, leaf)
		for _, entry := range leaf {
			require.NotEmpty(t, entry)
		}
	}
	require.NotEmpty(t, ctx.Balance[0])
	require.NotEmpty(t, ctx.Balance[1])
	require.NotEmpty(t, ctx.Hint)
	require.NotEmpty(t, fallback.ContextLeaf("unknown.leaf"))
}

func TestScenario(t *testing.T) {
	graph := fallback.Scenario()

	ids := make(map[string]bool)
	for _, atom := range graph.Atoms {
		ids[atom.ID] = true
	}
	require.LessOrEqual(t, len(graph.Atoms), domain.MaxAtoms)
	require.LessOrEqual(t, len(graph.Sequence), domain.MaxSequence)
	require.LessOrEqual(t, len(graph.Relations), domain.MaxRelations)
	for _, id := range graph.Sequence {
		require.True(t, ids[id])
	}
	for _, rel := range graph.Relations {
		require.True(t, ids[rel.From])
		require.True(t, ids[rel.To])
	}
}

func TestThoughtSet(t *testing.T) {
	set := fallback.ThoughtSet()

	for _, c := range domain.ThoughtCategories() {
		thoughts := set.Category(c)
		require.NotEmpty(t, thoughts)
		require.LessOrEqual(t, len(thoughts), domain.MaxThoughtsPerCategory)
	}
}
