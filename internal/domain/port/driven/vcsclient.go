// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

// ErrCommentNotFound indicates a comment id no longer resolves on the host,
// typically because a concurrent actor deleted it.
var ErrCommentNotFound = errors.New("comment not found")

// VCSClient is the driven port for one pull/merge request on a hosting
// platform. Implementations own all wire details; errors they return are
// fatal to the review run.
type VCSClient interface {
	// HeadSHA returns the current head commit of the change request.
	// It is re-read on every run and never cached across runs.
	HeadSHA(ctx context.Context) (string, error)

	// FetchDiff returns the unified diff of the change request.
	FetchDiff(ctx context.Context) (string, error)

	// ListComments returns all top-level comments/notes in the order the
	// host returns them.
	ListComments(ctx context.Context) ([]model.Comment, error)

	// GetComment re-reads a single comment by id. Returns
	// ErrCommentNotFound if it no longer exists.
	GetComment(ctx context.Context, id string) (model.Comment, error)

	// CreateComment posts a new top-level comment and returns it.
	CreateComment(ctx context.Context, body string) (model.Comment, error)

	// UpdateComment replaces the body of an existing comment in place.
	UpdateComment(ctx context.Context, id, body string) (model.Comment, error)
}
