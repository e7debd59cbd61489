package application

import (
	"context"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// claimDecision is the outcome of scanning existing comments for this head
// SHA's markers.
type claimDecision struct {
	// Skip means the SHA is already claimed or reviewed and force is off.
	Skip bool

	// UpdateID, when non-empty, is an existing comment to reuse for the
	// claim write instead of creating a new one.
	UpdateID string
}

// decideClaim applies the duplicate-run rules. A final or claim marker for
// the current SHA skips the run unless force is set. Under force, an
// existing claim or final comment is reclaimed in place so the target never
// accumulates more than one bot comment per SHA.
func decideClaim(comments []model.Comment, markers model.Markers, opts model.RunOptions) claimDecision {
	finalComment := model.FindCommentWithMarker(comments, markers.Final)
	claimComment := model.FindCommentWithMarker(comments, markers.Claim)

	if !opts.Force && (finalComment != nil || claimComment != nil) {
		return claimDecision{Skip: true}
	}

	switch {
	case claimComment != nil:
		return claimDecision{UpdateID: claimComment.ID}
	case opts.Force && finalComment != nil:
		return claimDecision{UpdateID: finalComment.ID}
	default:
		return claimDecision{}
	}
}

// writeClaim performs the claim write and returns the claim comment id.
func writeClaim(ctx context.Context, vcs driven.VCSClient, decision claimDecision, body string) (string, error) {
	if decision.UpdateID != "" {
		updated, err := vcs.UpdateComment(ctx, decision.UpdateID, body)
		if err != nil {
			return "", err
		}
		return updated.ID, nil
	}
	created, err := vcs.CreateComment(ctx, body)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}
