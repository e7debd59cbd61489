package application

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

// headings holds the report section titles for one output language.
type headings struct {
	Title        string
	Reviews      string
	Failed       string
	Reactions    string
	ReactionNone string
	ReactionOn   string
	Usage        string
	UsageTotal   string
	ErrorNote    string
}

var headingsByLanguage = map[model.CommentLanguage]headings{
	model.LanguageEnglish: {
		Title:        "Multi-Agent Review Summary",
		Reviews:      "Agent Reviews",
		Failed:       "failed",
		Reactions:    "Agent-to-Agent Reactions",
		ReactionNone: "Not enough agents to run cross-agent reactions.",
		ReactionOn:   "%s on Other Agents",
		Usage:        "Token Usage (Best Effort)",
		UsageTotal:   "Total",
		ErrorNote:    "Error",
	},
	model.LanguageKorean: {
		Title:        "멀티 에이전트 리뷰 요약",
		Reviews:      "에이전트 리뷰",
		Failed:       "실패",
		Reactions:    "에이전트 상호 반응",
		ReactionNone: "교차 반응을 실행하기에 에이전트 수가 부족합니다.",
		ReactionOn:   "%s의 다른 에이전트에 대한 반응",
		Usage:        "토큰 사용량 (추정치)",
		UsageTotal:   "합계",
		ErrorNote:    "오류",
	},
}

// renderClaim builds the in-progress comment body. Its claim marker is what
// other concurrent runs detect and back off from.
func renderClaim(sha, targetURL string) string {
	markers := model.MarkersForSHA(sha)
	return fmt.Sprintf(
		"%s\n\n# Multi-Agent Code Review\n\n- Target: %s\n- Head SHA: `%s`\n\nReview in progress...",
		markers.Claim, targetURL, sha,
	)
}

// finalReportInput carries everything the final report needs.
type finalReportInput struct {
	Markers   model.Markers
	TargetURL string
	HeadSHA   string
	Language  model.CommentLanguage
	Results   []model.ReviewResult
	Reactions []model.CrossReviewResult
}

// renderFinalReport composes the single summary comment: one section per
// provider, failure notes, the cross-agent reaction sections, the usage
// table, and the final marker footer.
func renderFinalReport(in finalReportInput) string {
	h, ok := headingsByLanguage[in.Language]
	if !ok {
		h = headingsByLanguage[model.LanguageEnglish]
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n", h.Title)
	fmt.Fprintf(&out, "- Target: %s\n", in.TargetURL)
	fmt.Fprintf(&out, "- Head SHA: `%s`\n\n", in.HeadSHA)

	fmt.Fprintf(&out, "## %s\n\n", h.Reviews)
	for _, r := range in.Results {
		if r.OK() {
			fmt.Fprintf(&out, "### %s\n\n", r.ProviderName)
			out.WriteString(strings.TrimSpace(r.Text))
		} else {
			fmt.Fprintf(&out, "### %s (%s)\n\n", r.ProviderName, h.Failed)
			fmt.Fprintf(&out, "_%s: %v_", h.ErrorNote, r.Err)
		}
		out.WriteString("\n\n")
	}

	fmt.Fprintf(&out, "## %s\n\n", h.Reactions)
	if len(in.Reactions) == 0 {
		fmt.Fprintf(&out, "- %s\n\n", h.ReactionNone)
	} else {
		for _, x := range in.Reactions {
			if !x.OK() {
				continue
			}
			out.WriteString("---\n\n")
			fmt.Fprintf(&out, "### "+h.ReactionOn+"\n\n", x.ProviderName)
			out.WriteString(strings.TrimSpace(x.Text))
			out.WriteString("\n\n")
		}
	}

	rows, total := aggregateUsage(in.Results, in.Reactions)
	fmt.Fprintf(&out, "## %s\n\n", h.Usage)
	out.WriteString("| Agent | Prompt | Completion | Total |\n")
	out.WriteString("|---|---:|---:|---:|\n")
	for _, row := range rows {
		fmt.Fprintf(&out, "| %s | %s | %s | %s |\n",
			row.Name, optNum(row.Usage.Prompt), optNum(row.Usage.Completion), optNum(row.Usage.Total))
	}
	fmt.Fprintf(&out, "| **%s** | %s | %s | %s |\n",
		h.UsageTotal, optNum(total.Prompt), optNum(total.Completion), optNum(total.Total))

	out.WriteString("\n")
	out.WriteString(in.Markers.Final)
	out.WriteString("\n")
	return out.String()
}

func optNum(v *int64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatInt(*v, 10)
}
