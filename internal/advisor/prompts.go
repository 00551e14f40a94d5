package advisor

import (
	"fmt"
	"strings"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/fallback"
)

// PromptVersion is bumped whenever a system prompt changes; it is part of every fingerprint
// through the prompt text, so cached results of older prompts are never served.
const PromptVersion = "v3"

const preamble = "You are a calm, careful reflective-journaling assistant. " +
	"Reply with a single JSON object and nothing else: no prose, no markdown."

var systemPrompts = map[domain.Domain]string{
	domain.DomainRank: `Rank all ten thinking patterns by how strongly the entry shows them.
Schema: {"rankings":[{"index":<1-10>,"reason":"<one sentence>","evidence":"<short quote>"}]}
Include every index from 1 to 10 exactly once, most relevant first.`,

	domain.DomainDetail: `Explain how each listed pattern shows up in the entry.
Schema: {"details":[{"index":<pattern number>,"analysis":"<two or three sentences>"}]}
Write exactly one item per listed pattern and no others.`,

	domain.DomainAlternatives: `Offer one alternative thought per technique.
Schema: {"alternatives":[{"thought":"<first person>","technique":"evidence_check|perspective_shift|compassionate_reframe","techniqueDescription":"<one sentence>"}]}`,

	domain.DomainContext: `Break the entry down into short phrases.
Schema: {"situation":{"facts":[<=3],"triggers":[<=2]},"reaction":{"emotions":[<=4],"sensations":[<=3],"urges":[<=2]},"meaning":{"beliefs":[<=3],"needs":[<=2]},"balance":["<one side>","<other side>"],"hint":"<one sentence>"}`,

	domain.DomainScenario: `Replay the entry as a small graph.
Schema: {"atoms":[{"id":"a1","type":"event|thought|emotion|sensation|behavior|belief|need|outcome","text":"<=160 chars"}],"sequence":["a1",...],"relations":[{"from":"a1","to":"a2","label":"<verb>"}]}
Use at most 8 atoms, a sequence of at most 5 ids and at most 1 relation.`,

	domain.DomainThoughts: `List short thoughts in three categories.
Schema: {"automatic":[<=3],"balanced":[<=3],"coping":[<=3]}`,
}

// SystemPrompt returns the fixed, versioned system instruction of d.
func SystemPrompt(d domain.Domain) string {
	return fmt.Sprintf("[kiln/%s@%s]\n%s\n%s", d, PromptVersion, preamble, systemPrompts[d])
}

// UserPrompt renders the entry, listing the pattern catalogue (rank) or the candidate
// patterns (detail) when the domain needs them.
func UserPrompt(d domain.Domain, entry string, candidates []int) string {
	var b strings.Builder

	switch d {
	case domain.DomainRank:
		b.WriteString("Thinking patterns:\n")
		for i := 1; i <= fallback.PatternCount; i++ {
			fmt.Fprintf(&b, "%d. %s\n", i, fallback.PatternName(i))
		}
		b.WriteString("\n")
	case domain.DomainDetail:
		b.WriteString("Patterns to explain:\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "%d. %s\n", c, fallback.PatternName(c))
		}
		b.WriteString("\n")
	}

	b.WriteString("Entry:\n")
	b.WriteString(entry)
	return b.String()
}
