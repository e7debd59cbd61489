// Package application contains the review orchestration engine: target
// resolution, duplicate-run protection, concurrent provider fan-out, the
// cross-agent reaction pass, and final report publication. It depends only
// on port interfaces and the config layer.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ericfisherdev/prpilot/internal/config"
	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// ErrMarkerConflict indicates the claim comment was mutated or removed by a
// concurrent actor between the claim write and the finalize write. The run
// aborts; it never retries or overwrites the other actor's state.
var ErrMarkerConflict = errors.New("claim marker conflict")

// ErrNoRunnableProviders indicates that no provider resolved to a usable
// API or CLI mode.
var ErrNoRunnableProviders = errors.New("no runnable providers")

// VCSFactory builds the platform client for a parsed target. The token may
// be empty on dry runs.
type VCSFactory func(target model.ReviewTarget, token, apiBase string) (driven.VCSClient, error)

// AgentFactory builds one agent per resolved provider.
type AgentFactory func(resolved []config.ResolvedProvider) []driven.ProviderAgent

// Engine coordinates one review run end to end.
type Engine struct {
	loader      *config.Loader
	newVCS      VCSFactory
	buildAgents AgentFactory
	out         io.Writer

	// lookPath is swapped in tests to control provider mode resolution.
	lookPath func(string) (string, error)
}

// NewEngine creates the engine with its driven-side factories. Dry-run
// report output goes to out.
func NewEngine(loader *config.Loader, newVCS VCSFactory, buildAgents AgentFactory, out io.Writer) *Engine {
	return &Engine{
		loader:      loader,
		newVCS:      newVCS,
		buildAgents: buildAgents,
		out:         out,
		lookPath:    exec.LookPath,
	}
}

// Run executes one review. A clean duplicate-run skip returns nil; the run
// fails only on fatal config/VCS errors, a marker conflict, or when every
// provider fails its first pass.
func (e *Engine) Run(ctx context.Context, opts model.RunOptions) error {
	target, err := model.ParseTarget(opts.URL)
	if err != nil {
		return err
	}
	slog.Info("review run starting",
		"target", target.URL,
		"kind", string(target.Kind),
		"dry_run", opts.DryRun,
		"force", opts.Force,
	)

	loaded, err := e.loader.Load()
	if err != nil {
		return err
	}
	cfg := &loaded.Config

	hc, hostKnown := cfg.Host(target.Host)
	token := config.ResolveHostToken(hc, hostKnown)
	if !opts.DryRun && !token.Resolved() {
		return fmt.Errorf(
			"missing VCS token for host %q: set hosts.%s.token or hosts.%s.token_env, or use --dry-run",
			target.Host, target.Host, target.Host,
		)
	}

	apiBase := ""
	if hc.APIBase != nil {
		apiBase = *hc.APIBase
	}
	vcs, err := e.newVCS(target, token.Token, apiBase)
	if err != nil {
		return err
	}

	headSHA, err := vcs.HeadSHA(ctx)
	if err != nil {
		return fmt.Errorf("fetching head SHA: %w", err)
	}
	slog.Info("resolved head commit", "sha", headSHA)

	comments, err := vcs.ListComments(ctx)
	if err != nil {
		return fmt.Errorf("listing comments: %w", err)
	}

	markers := model.MarkersForSHA(headSHA)
	claim := decideClaim(comments, markers, opts)
	if claim.Skip {
		slog.Info("head commit already claimed or reviewed, skipping", "sha", headSHA)
		return nil
	}

	claimID := ""
	if !opts.DryRun {
		claimID, err = writeClaim(ctx, vcs, claim, renderClaim(headSHA, target.URL))
		if err != nil {
			return fmt.Errorf("claiming review: %w", err)
		}
	}

	diff, err := vcs.FetchDiff(ctx)
	if err != nil {
		return fmt.Errorf("fetching diff: %w", err)
	}
	diff = truncateDiff(diff, cfg.MaxDiffBytes())

	systemPrompt, err := cfg.ResolvedSystemPrompt()
	if err != nil {
		return err
	}

	resolved, excluded := config.ResolveProviders(cfg, e.lookPath)
	for _, ex := range excluded {
		slog.Warn("provider excluded", "provider", ex.ID, "reason", ex.Reason)
	}
	if len(resolved) == 0 {
		return fmt.Errorf("%w: configure providers.<name> with an API key or an installed command", ErrNoRunnableProviders)
	}
	agents := e.buildAgents(resolved)

	prompt := driven.ReviewPrompt{
		System: systemPrompt,
		User:   buildUserPrompt(target.URL, headSHA, diff),
	}
	results := runPrimaryReviews(ctx, agents, prompt)

	succeeded := successfulResults(results)
	if len(succeeded) == 0 {
		return fmt.Errorf("all %d providers failed the review pass", len(results))
	}

	var reactions []model.CrossReviewResult
	if len(succeeded) >= 2 {
		reactions = runCrossReviews(ctx, agents, target.URL, headSHA, cfg.CommentLanguage(), succeeded)
	} else {
		slog.Info("skipping cross-agent pass, needs at least two successful reviews")
	}

	report := renderFinalReport(finalReportInput{
		Markers:   markers,
		TargetURL: target.URL,
		HeadSHA:   headSHA,
		Language:  cfg.CommentLanguage(),
		Results:   results,
		Reactions: reactions,
	})

	if opts.DryRun {
		fmt.Fprintln(e.out, report)
		slog.Info("dry run complete, nothing posted")
		return nil
	}

	if err := e.finalize(ctx, vcs, claimID, markers, report); err != nil {
		return err
	}
	slog.Info("final summary comment posted", "sha", headSHA)
	return nil
}

// finalize replaces the claim comment body with the final report. The
// comment is re-read first; any concurrent mutation aborts the write.
func (e *Engine) finalize(ctx context.Context, vcs driven.VCSClient, claimID string, markers model.Markers, report string) error {
	current, err := vcs.GetComment(ctx, claimID)
	if err != nil {
		if errors.Is(err, driven.ErrCommentNotFound) {
			return fmt.Errorf("%w: claim comment %s was deleted", ErrMarkerConflict, claimID)
		}
		return fmt.Errorf("re-reading claim comment: %w", err)
	}
	if !strings.Contains(current.Body, markers.Claim) {
		return fmt.Errorf("%w: claim comment %s no longer carries our claim marker", ErrMarkerConflict, claimID)
	}

	if _, err := vcs.UpdateComment(ctx, claimID, report); err != nil {
		return fmt.Errorf("posting final summary: %w", err)
	}
	return nil
}
