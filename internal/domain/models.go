package domain

import "time"

// Domain tags one feature's response schema.
type Domain string

// Known domains.
const (
	DomainRank         Domain = "rank"
	DomainDetail       Domain = "detail"
	DomainAlternatives Domain = "alternatives"
	DomainContext      Domain = "context"
	DomainScenario     Domain = "scenario"
	DomainThoughts     Domain = "thoughts"
)

// PromptRequest is one orchestrated completion call. It is created per call and never stored.
type PromptRequest struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
	Model        string `json:"model"`
	Domain       Domain `json:"domain"`

	// AllowUnparsed lets the orchestrator return the raw text when no object could be
	// extracted instead of failing with ParseStageError. The zero value requires a parse.
	AllowUnparsed bool `json:"allow_unparsed,omitempty"`

	// Proposal marks a billable proposal action; it triggers a best-effort usage sync.
	Proposal bool `json:"proposal,omitempty"`
}

// CompletionRequest is what a Provider receives.
type CompletionRequest struct {
	Model        string            `json:"model"`
	SystemPrompt string            `json:"system_prompt"`
	Prompt       string            `json:"prompt"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// RawCompletion is the unstructured provider answer.
type RawCompletion struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider"`
	Text       string    `json:"text"`
	Usage      Usage     `json:"usage"`
	FinishTime time.Time `json:"finish_time"`
}

// Usage tracks token consumption of one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// UsageSnapshot is the accumulated ledger state.
type UsageSnapshot struct {
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	RequestCount  int     `json:"request_count"`
	ProposalCount int     `json:"note_proposal_count"`
	Cost          float64 `json:"cost"`
}

// IsZero reports whether nothing has been recorded.
func (s UsageSnapshot) IsZero() bool {
	return s.TotalTokens == 0 && s.InputTokens == 0 && s.OutputTokens == 0 &&
		s.RequestCount == 0 && s.ProposalCount == 0 && s.Cost == 0
}
