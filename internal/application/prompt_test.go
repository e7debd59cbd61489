package application

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

func TestBuildUserPromptShape(t *testing.T) {
	prompt := buildUserPrompt("https://github.com/a/b/pull/1", "abc123", "diff --git\n")
	assert.True(t, strings.HasPrefix(prompt, "Target URL: https://github.com/a/b/pull/1\nHead SHA: abc123\n"))
	assert.Contains(t, prompt, "```diff\ndiff --git\n\n```")
}

func TestBuildCrossPromptExcludesSelfFindings(t *testing.T) {
	succeeded := []model.ReviewResult{
		{ProviderID: "openai", ProviderName: "OpenAI/Codex", Text: "codex said X"},
		{ProviderID: "anthropic", ProviderName: "Claude", Text: "claude said Y"},
	}

	prompt := buildCrossPrompt("https://github.com/a/b/pull/1", "abc123",
		"anthropic", "Claude", model.LanguageEnglish, succeeded)

	assert.Contains(t, prompt, "codex said X")
	assert.NotContains(t, prompt, "claude said Y")
	assert.Contains(t, prompt, "Now write Claude's reaction to other agents.")
	assert.Contains(t, prompt, "Agreements, Disagreements, Missed Risks, Suggested Resolution")
}

func TestBuildCrossPromptLanguageDirectiveIsEnglishText(t *testing.T) {
	prompt := buildCrossPrompt("u", "s", "openai", "OpenAI/Codex",
		model.LanguageKorean, []model.ReviewResult{{ProviderID: "anthropic", Text: "x"}})
	assert.Contains(t, prompt, "Write the final answer in Korean only.")
}

func TestTruncateDiffUnderLimitIsUntouched(t *testing.T) {
	diff := "short diff"
	assert.Equal(t, diff, truncateDiff(diff, 100))
	assert.NotContains(t, truncateDiff(diff, len(diff)), "truncated")
}

func TestTruncateDiffAppendsSentinel(t *testing.T) {
	diff := strings.Repeat("a", 200)
	got := truncateDiff(diff, 50)
	require.True(t, strings.HasSuffix(got, diffTruncatedSentinel))
	assert.Equal(t, strings.Repeat("a", 50), strings.TrimSuffix(got, diffTruncatedSentinel))
}

func TestTruncateDiffRespectsRuneBoundaries(t *testing.T) {
	// "한" is 3 bytes; a 4-byte cap lands mid-rune and must back up.
	diff := "a한한한"
	got := truncateDiff(diff, 4)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "a한"+diffTruncatedSentinel, got)
}
