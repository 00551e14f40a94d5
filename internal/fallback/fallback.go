package fallback

import (
	"fmt"

	"github.com/davidbz/kiln/internal/domain"
)

// Ranking returns the default ranking: every pattern once, in catalogue order.
func Ranking() domain.Ranking {
	items := make([]domain.RankedItem, 0, domain.RankSize)
	for index := 1; index <= domain.RankSize; index++ {
		items = append(items, domain.RankedItem{
			Index:  index,
			Reason: patterns[index].reason,
		})
	}
	return domain.Ranking{Rankings: items}
}

// DetailAnalysis returns the canned analysis for one pattern index.
func DetailAnalysis(index int) string {
	if index < 1 || index > PatternCount {
		return fmt.Sprintf("%s could not be analysed for this entry. Reread the entry and note any sentence where this pattern might apply.", PatternName(index))
	}
	return fmt.Sprintf("%s: %s", patterns[index].name, patterns[index].analysis)
}

// Detail returns the fallback item for one candidate.
func Detail(index int) domain.DetailItem {
	return domain.DetailItem{Index: index, Analysis: DetailAnalysis(index)}
}

// Details returns fallback items for every candidate, in candidate order.
func Details(candidates []int) domain.DetailSet {
	items := make([]domain.DetailItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, Detail(c))
	}
	return domain.DetailSet{Details: items}
}

// TechniqueDescription returns the canonical description of t.
func TechniqueDescription(t domain.Technique) string {
	switch t {
	case domain.TechniqueEvidenceCheck:
		return "Weigh the evidence for and against the thought, as a neutral observer would."
	case domain.TechniquePerspectiveShift:
		return "Step outside the moment: consider how it looks from a friend's view or a year from now."
	case domain.TechniqueCompassionateReframe:
		return "Speak to yourself with the warmth you would offer someone you care about."
	default:
		return "Try describing the situation in a more balanced way."
	}
}

// Alternative returns the default thought for one technique slot.
func Alternative(t domain.Technique) domain.AlternativeThought {
	var thought string
	switch t {
	case domain.TechniqueEvidenceCheck:
		thought = "Some facts support this worry and some do not; I do not have the full picture yet."
	case domain.TechniquePerspectiveShift:
		thought = "A year from now this will likely feel smaller than it does today."
	case domain.TechniqueCompassionateReframe:
		thought = "I am having a hard moment, and it makes sense that this feels heavy."
	default:
		thought = "There may be another way to look at this."
	}

	return domain.AlternativeThought{
		Thought:              thought,
		Technique:            t,
		TechniqueDescription: TechniqueDescription(t),
	}
}

// Alternatives returns one default thought per technique, in canonical order.
func Alternatives() domain.AlternativeSet {
	techniques := domain.Techniques()
	items := make([]domain.AlternativeThought, 0, len(techniques))
	for _, t := range techniques {
		items = append(items, Alternative(t))
	}
	return domain.AlternativeSet{Alternatives: items}
}

// Thoughts returns the default list for one category.
func Thoughts(c domain.ThoughtCategory) []string {
	switch c {
	case domain.ThoughtsAutomatic:
		return []string{
			"Something is going wrong and it is my fault.",
			"I cannot handle this.",
		}
	case domain.ThoughtsBalanced:
		return []string{
			"This is difficult, and I have handled difficult things before.",
			"One moment does not define the whole situation.",
		}
	case domain.ThoughtsCoping:
		return []string{
			"Take three slow breaths before deciding what to do next.",
			"Write down one small step I can take today.",
		}
	default:
		return []string{"Pause and notice what you are thinking right now."}
	}
}

// ThoughtSet returns the default list for every category.
func ThoughtSet() domain.ThoughtSet {
	var set domain.ThoughtSet
	for _, c := range domain.ThoughtCategories() {
		set.SetCategory(c, Thoughts(c))
	}
	return set
}
