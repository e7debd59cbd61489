// Package model holds the review domain types shared by the orchestration
// engine and its adapters. Everything here is a plain value; nothing is
// mutated after construction.
package model

import "strings"

// RunOptions carries the per-invocation flags for one review run.
type RunOptions struct {
	URL    string
	DryRun bool
	Force  bool
}

// TokenUsage holds best-effort token counts for one provider invocation.
// Nil fields mean the metric could not be determined; they are rendered as
// "n/a" and excluded from aggregate totals, never treated as zero.
type TokenUsage struct {
	Prompt     *int64
	Completion *int64
	Total      *int64
}

// Add folds another usage sample into u. A nil field on either side leaves
// the sum at whichever side has a value.
func (u *TokenUsage) Add(other TokenUsage) {
	u.Prompt = sumOptional(u.Prompt, other.Prompt)
	u.Completion = sumOptional(u.Completion, other.Completion)
	u.Total = sumOptional(u.Total, other.Total)
}

// Available reports whether any metric was determined.
func (u TokenUsage) Available() bool {
	return u.Prompt != nil || u.Completion != nil || u.Total != nil
}

func sumOptional(a, b *int64) *int64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		sum := *a + *b
		return &sum
	}
}

// ReviewResult is the outcome of one provider's first-pass review. Exactly
// one of Text/Err is set; each result is written by exactly one goroutine
// and read-only afterwards.
type ReviewResult struct {
	ProviderID   string
	ProviderName string
	Text         string
	Usage        TokenUsage
	Err          error
}

// OK reports whether the first pass succeeded for this provider.
func (r ReviewResult) OK() bool { return r.Err == nil }

// CrossReviewResult is the outcome of one provider's reaction pass. Results
// exist only for providers that succeeded in the first pass.
type CrossReviewResult struct {
	ProviderID   string
	ProviderName string
	Text         string
	Usage        TokenUsage
	Err          error
}

// OK reports whether the reaction pass succeeded for this provider.
func (r CrossReviewResult) OK() bool { return r.Err == nil }

// CommentLanguage selects the output language of the rendered report.
// Provider prompts are always authored in English regardless of this value.
type CommentLanguage string

const (
	LanguageEnglish CommentLanguage = "en"
	LanguageKorean  CommentLanguage = "ko"
)

// ParseCommentLanguage normalizes a config string to a CommentLanguage.
// Unknown or empty values fall back to English.
func ParseCommentLanguage(raw string) CommentLanguage {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ko", "kr", "korean":
		return LanguageKorean
	default:
		return LanguageEnglish
	}
}

// PromptInstruction returns the English-authored output-language directive
// appended to provider prompts.
func (l CommentLanguage) PromptInstruction() string {
	if l == LanguageKorean {
		return "Write the final answer in Korean only. Do not use English headings or body text."
	}
	return "Write the final answer in English only."
}
