package application

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// runPrimaryReviews fans the first-pass prompt out to every agent at once.
// Each goroutine owns exactly one result slot; a provider failure lands in
// its slot as a ProviderError and never cancels the siblings.
func runPrimaryReviews(ctx context.Context, agents []driven.ProviderAgent, prompt driven.ReviewPrompt) []model.ReviewResult {
	results := make([]model.ReviewResult, len(agents))

	g, ctx := errgroup.WithContext(ctx)
	for i, agent := range agents {
		g.Go(func() error {
			started := time.Now()
			resp, err := agent.Review(ctx, prompt)
			elapsed := time.Since(started).Round(100 * time.Millisecond)

			results[i] = model.ReviewResult{
				ProviderID:   agent.ID(),
				ProviderName: agent.Name(),
				Text:         resp.Text,
				Usage:        resp.Usage,
				Err:          err,
			}
			if err != nil {
				slog.Warn("provider review failed", "provider", agent.ID(), "elapsed", elapsed, "error", err)
			} else {
				slog.Info("provider review done", "provider", agent.ID(), "elapsed", elapsed)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runCrossReviews runs the reaction pass: each first-pass survivor reads its
// peers' findings and answers with agreements, disagreements, missed risks,
// and a suggested resolution. A reaction failure only drops that provider's
// cross section.
func runCrossReviews(
	ctx context.Context,
	agents []driven.ProviderAgent,
	targetURL, headSHA string,
	language model.CommentLanguage,
	succeeded []model.ReviewResult,
) []model.CrossReviewResult {
	participants := make([]driven.ProviderAgent, 0, len(succeeded))
	for _, agent := range agents {
		if resultOK(succeeded, agent.ID()) {
			participants = append(participants, agent)
		}
	}

	results := make([]model.CrossReviewResult, len(participants))

	g, ctx := errgroup.WithContext(ctx)
	for i, agent := range participants {
		prompt := driven.ReviewPrompt{
			User: buildCrossPrompt(targetURL, headSHA, agent.ID(), agent.Name(), language, succeeded),
		}
		g.Go(func() error {
			started := time.Now()
			resp, err := agent.Review(ctx, prompt)
			elapsed := time.Since(started).Round(100 * time.Millisecond)

			results[i] = model.CrossReviewResult{
				ProviderID:   agent.ID(),
				ProviderName: agent.Name(),
				Text:         resp.Text,
				Usage:        resp.Usage,
				Err:          err,
			}
			if err != nil {
				slog.Warn("cross-agent reaction failed", "provider", agent.ID(), "elapsed", elapsed, "error", err)
			} else {
				slog.Info("cross-agent reaction done", "provider", agent.ID(), "elapsed", elapsed)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// successfulResults filters the first pass down to the providers whose
// review text made it back.
func successfulResults(results []model.ReviewResult) []model.ReviewResult {
	ok := make([]model.ReviewResult, 0, len(results))
	for _, r := range results {
		if r.OK() {
			ok = append(ok, r)
		}
	}
	return ok
}

func resultOK(succeeded []model.ReviewResult, providerID string) bool {
	for _, r := range succeeded {
		if r.ProviderID == providerID {
			return true
		}
	}
	return false
}

// aggregateUsage sums per-provider usage across both passes. Unavailable
// metrics stay unavailable; they are never counted as zero.
func aggregateUsage(results []model.ReviewResult, reactions []model.CrossReviewResult) ([]usageRow, model.TokenUsage) {
	rows := make([]usageRow, 0, len(results))
	var total model.TokenUsage

	for _, r := range results {
		usage := r.Usage
		for _, x := range reactions {
			if x.ProviderID == r.ProviderID && x.OK() {
				usage.Add(x.Usage)
			}
		}
		rows = append(rows, usageRow{Name: r.ProviderName, Usage: usage})
		total.Add(usage)
	}
	return rows, total
}

// usageRow is one line of the report's usage table.
type usageRow struct {
	Name  string
	Usage model.TokenUsage
}
