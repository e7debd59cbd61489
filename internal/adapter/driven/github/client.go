// Package github implements the VCSClient port for GitHub pull requests
// using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VCSClient = (*Client)(nil)

// Client targets one pull request through the GitHub REST API.
type Client struct {
	gh     *gh.Client
	owner  string
	repo   string
	number int
}

// NewClient creates a client for one pull request with the following
// transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// apiBase overrides the endpoint; when empty, hosts other than github.com
// use the GitHub Enterprise convention https://<host>/api/v3/.
func NewClient(target model.ReviewTarget, token, apiBase string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	base := apiBase
	if base == "" && target.Host != "github.com" {
		base = fmt.Sprintf("https://%s/api/v3/", target.Host)
	}
	if base != "" {
		var err error
		client, err = client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub endpoint %s: %w", base, err)
		}
	}

	return &Client{
		gh:     client,
		owner:  target.Owner,
		repo:   target.Repo,
		number: target.Number,
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, target model.ReviewTarget) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:     client,
		owner:  target.Owner,
		repo:   target.Repo,
		number: target.Number,
	}, nil
}

// HeadSHA returns the current head commit of the pull request.
func (c *Client) HeadSHA(ctx context.Context) (string, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, c.number)
	if err != nil {
		return "", fmt.Errorf("fetching PR %s/%s#%d: %w", c.owner, c.repo, c.number, err)
	}
	sha := pr.GetHead().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("PR %s/%s#%d has no head SHA", c.owner, c.repo, c.number)
	}
	return sha, nil
}

// FetchDiff returns the unified diff via the diff media type.
func (c *Client) FetchDiff(ctx context.Context) (string, error) {
	diff, _, err := c.gh.PullRequests.GetRaw(ctx, c.owner, c.repo, c.number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("fetching diff for %s/%s#%d: %w", c.owner, c.repo, c.number, err)
	}
	return diff, nil
}

// ListComments returns all issue comments on the pull request in API order,
// handling pagination.
func (c *Client) ListComments(ctx context.Context) ([]model.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []model.Comment
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, c.number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments for %s/%s#%d (page %d): %w", c.owner, c.repo, c.number, opts.Page, err)
		}
		for _, comment := range comments {
			all = append(all, mapComment(comment))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetComment re-reads a single comment by id.
func (c *Client) GetComment(ctx context.Context, id string) (model.Comment, error) {
	commentID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return model.Comment{}, fmt.Errorf("invalid comment id %q: %w", id, err)
	}

	comment, _, err := c.gh.Issues.GetComment(ctx, c.owner, c.repo, commentID)
	if err != nil {
		if isNotFound(err) {
			return model.Comment{}, fmt.Errorf("%w: %s", driven.ErrCommentNotFound, id)
		}
		return model.Comment{}, fmt.Errorf("fetching comment %s: %w", id, err)
	}
	return mapComment(comment), nil
}

// CreateComment posts a new issue comment on the pull request.
func (c *Client) CreateComment(ctx context.Context, body string) (model.Comment, error) {
	posted, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, c.number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return model.Comment{}, fmt.Errorf("creating comment on %s/%s#%d: %w", c.owner, c.repo, c.number, err)
	}
	return mapComment(posted), nil
}

// UpdateComment replaces the body of an existing comment in place.
func (c *Client) UpdateComment(ctx context.Context, id, body string) (model.Comment, error) {
	commentID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return model.Comment{}, fmt.Errorf("invalid comment id %q: %w", id, err)
	}

	updated, _, err := c.gh.Issues.EditComment(ctx, c.owner, c.repo, commentID, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		if isNotFound(err) {
			return model.Comment{}, fmt.Errorf("%w: %s", driven.ErrCommentNotFound, id)
		}
		return model.Comment{}, fmt.Errorf("updating comment %s: %w", id, err)
	}
	return mapComment(updated), nil
}

func mapComment(comment *gh.IssueComment) model.Comment {
	return model.Comment{
		ID:   strconv.FormatInt(comment.GetID(), 10),
		Body: comment.GetBody(),
	}
}

func isNotFound(err error) bool {
	var ghErr *gh.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
