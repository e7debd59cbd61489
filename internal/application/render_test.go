package application

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

func ptr(v int64) *int64 { return &v }

func TestRenderClaimCarriesClaimMarker(t *testing.T) {
	body := renderClaim("abc123", "https://github.com/a/b/pull/1")
	markers := model.MarkersForSHA("abc123")
	assert.True(t, strings.HasPrefix(body, markers.Claim))
	assert.Contains(t, body, "Review in progress")
	assert.NotContains(t, body, markers.Final)
}

func TestRenderFinalReportSectionsAndFooter(t *testing.T) {
	report := renderFinalReport(finalReportInput{
		Markers:   model.MarkersForSHA("abc123"),
		TargetURL: "https://github.com/a/b/pull/1",
		HeadSHA:   "abc123",
		Language:  model.LanguageEnglish,
		Results: []model.ReviewResult{
			{ProviderID: "openai", ProviderName: "OpenAI/Codex", Text: "found a bug",
				Usage: model.TokenUsage{Prompt: ptr(100), Completion: ptr(20), Total: ptr(120)}},
			{ProviderID: "anthropic", ProviderName: "Claude", Err: errors.New("timed out")},
		},
		Reactions: []model.CrossReviewResult{
			{ProviderID: "openai", ProviderName: "OpenAI/Codex", Text: "agree with myself",
				Usage: model.TokenUsage{Total: ptr(30)}},
		},
	})

	assert.Contains(t, report, "# Multi-Agent Review Summary")
	assert.Contains(t, report, "### OpenAI/Codex\n\nfound a bug")
	assert.Contains(t, report, "### Claude (failed)")
	assert.Contains(t, report, "_Error: timed out_")
	assert.Contains(t, report, "### OpenAI/Codex on Other Agents")

	// Cross usage folds into the provider's row; the failed provider stays n/a.
	assert.Contains(t, report, "| OpenAI/Codex | 100 | 20 | 150 |")
	assert.Contains(t, report, "| Claude | n/a | n/a | n/a |")
	assert.Contains(t, report, "| **Total** | 100 | 20 | 150 |")

	require.True(t, strings.HasSuffix(strings.TrimRight(report, "\n"), model.MarkersForSHA("abc123").Final))
}

func TestRenderFinalReportWithoutReactions(t *testing.T) {
	report := renderFinalReport(finalReportInput{
		Markers:  model.MarkersForSHA("abc123"),
		Language: model.LanguageEnglish,
		Results: []model.ReviewResult{
			{ProviderID: "openai", ProviderName: "OpenAI/Codex", Text: "fine"},
		},
	})
	assert.Contains(t, report, "Not enough agents to run cross-agent reactions.")
}

func TestRenderFinalReportKoreanHeadings(t *testing.T) {
	report := renderFinalReport(finalReportInput{
		Markers:  model.MarkersForSHA("abc123"),
		Language: model.LanguageKorean,
		Results: []model.ReviewResult{
			{ProviderID: "openai", ProviderName: "OpenAI/Codex", Text: "발견 사항"},
		},
	})
	assert.Contains(t, report, "# 멀티 에이전트 리뷰 요약")
	assert.Contains(t, report, "## 에이전트 리뷰")
	// The marker itself is language-independent.
	assert.Contains(t, report, model.MarkersForSHA("abc123").Final)
}

func TestAggregateUsageSkipsUnavailable(t *testing.T) {
	rows, total := aggregateUsage([]model.ReviewResult{
		{ProviderID: "a", ProviderName: "A", Usage: model.TokenUsage{Prompt: ptr(10)}},
		{ProviderID: "b", ProviderName: "B"},
	}, nil)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), *total.Prompt)
	assert.Nil(t, total.Completion)
	assert.False(t, rows[1].Usage.Available())
}
