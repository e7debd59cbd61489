package application

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

// diffTruncatedSentinel is appended whenever the diff was cut to fit
// max_diff_bytes. Providers are expected to review the visible part only.
const diffTruncatedSentinel = "\n... (diff truncated)\n"

// buildUserPrompt is the first-pass task prompt. Always English; the report
// language only affects rendering.
func buildUserPrompt(targetURL, headSHA, diff string) string {
	return fmt.Sprintf(
		"Target URL: %s\nHead SHA: %s\n\nPlease review this diff and return concise Markdown findings.\n\n```diff\n%s\n```",
		targetURL, headSHA, diff,
	)
}

// buildCrossPrompt is the reaction-pass prompt for one provider. It carries
// every peer's first-pass findings, excluding the provider's own.
func buildCrossPrompt(
	targetURL, headSHA, selfID, selfName string,
	language model.CommentLanguage,
	succeeded []model.ReviewResult,
) string {
	var out strings.Builder
	out.WriteString("You are participating in a multi-agent code review.\n")
	out.WriteString("Analyze other agents' findings and provide your perspective.\n")
	out.WriteString("Output language requirement:\n")
	out.WriteString(language.PromptInstruction())
	out.WriteString("\n\n")
	fmt.Fprintf(&out, "Target URL: %s\n", targetURL)
	fmt.Fprintf(&out, "Head SHA: %s\n\n", headSHA)
	out.WriteString("Other agents' findings:\n\n")

	for _, r := range succeeded {
		if r.ProviderID == selfID {
			continue
		}
		fmt.Fprintf(&out, "## %s\n", r.ProviderName)
		out.WriteString(strings.TrimSpace(r.Text))
		out.WriteString("\n\n")
	}

	fmt.Fprintf(&out, "Now write %s's reaction to other agents.\n", selfName)
	out.WriteString("Use Markdown sections in this order: Agreements, Disagreements, Missed Risks, Suggested Resolution.\n")
	return out.String()
}

// truncateDiff cuts the diff to at most maxBytes content bytes, backing up
// to a rune boundary so the result stays valid UTF-8, and appends the
// truncation sentinel.
func truncateDiff(diff string, maxBytes int) string {
	if len(diff) <= maxBytes {
		return diff
	}
	cutoff := maxBytes
	for cutoff > 0 && !utf8.RuneStart(diff[cutoff]) {
		cutoff--
	}
	return diff[:cutoff] + diffTruncatedSentinel
}
