// Package gitlab implements the VCSClient port for GitLab merge requests
// over the REST API.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VCSClient = (*Client)(nil)

// Client targets one merge request through the GitLab REST API.
type Client struct {
	httpCli     *http.Client
	apiBase     string
	projectPath string
	iid         int
	token       string
}

// NewClient creates a client for one merge request. apiBase overrides the
// endpoint; when empty, https://<host>/api/v4 is used.
func NewClient(target model.ReviewTarget, token, apiBase string) *Client {
	base := strings.TrimRight(apiBase, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s/api/v4", target.Host)
	}
	return &Client{
		httpCli:     &http.Client{Timeout: 60 * time.Second},
		apiBase:     base,
		projectPath: target.ProjectPath,
		iid:         target.Number,
		token:       token,
	}
}

// NewClientWithHTTPClient creates a Client against a custom endpoint, for
// tests backed by an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, apiBase string, target model.ReviewTarget, token string) *Client {
	return &Client{
		httpCli:     httpClient,
		apiBase:     strings.TrimRight(apiBase, "/"),
		projectPath: target.ProjectPath,
		iid:         target.Number,
		token:       token,
	}
}

func (c *Client) mrEndpoint(suffix string) string {
	return fmt.Sprintf("%s/projects/%s/merge_requests/%d%s",
		c.apiBase, url.PathEscape(c.projectPath), c.iid, suffix)
}

func (c *Client) noteEndpoint(id string) string {
	return c.mrEndpoint("/notes/" + id)
}

type mergeRequestResponse struct {
	SHA      string `json:"sha"`
	DiffRefs struct {
		HeadSHA string `json:"head_sha"`
	} `json:"diff_refs"`
}

type changesResponse struct {
	Changes []struct {
		Diff string `json:"diff"`
	} `json:"changes"`
}

type noteResponse struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// HeadSHA returns the current head commit of the merge request.
func (c *Client) HeadSHA(ctx context.Context) (string, error) {
	var mr mergeRequestResponse
	if err := c.doJSON(ctx, http.MethodGet, c.mrEndpoint(""), nil, &mr); err != nil {
		return "", fmt.Errorf("fetching MR metadata: %w", err)
	}
	if mr.SHA != "" {
		return mr.SHA, nil
	}
	if mr.DiffRefs.HeadSHA != "" {
		return mr.DiffRefs.HeadSHA, nil
	}
	return "", fmt.Errorf("MR %s!%d response missing sha and diff_refs.head_sha", c.projectPath, c.iid)
}

// FetchDiff joins the per-file diffs from the changes API into one
// unified-diff-like document.
func (c *Client) FetchDiff(ctx context.Context) (string, error) {
	var changes changesResponse
	if err := c.doJSON(ctx, http.MethodGet, c.mrEndpoint("/changes"), nil, &changes); err != nil {
		return "", fmt.Errorf("fetching MR changes: %w", err)
	}

	parts := make([]string, 0, len(changes.Changes))
	for _, change := range changes.Changes {
		parts = append(parts, change.Diff)
	}
	return strings.Join(parts, "\n"), nil
}

// ListComments returns all notes on the merge request in API order.
func (c *Client) ListComments(ctx context.Context) ([]model.Comment, error) {
	var notes []noteResponse
	if err := c.doJSON(ctx, http.MethodGet, c.mrEndpoint("/notes"), nil, &notes); err != nil {
		return nil, fmt.Errorf("listing MR notes: %w", err)
	}

	comments := make([]model.Comment, 0, len(notes))
	for _, note := range notes {
		comments = append(comments, mapNote(note))
	}
	return comments, nil
}

// GetComment re-reads a single note by id.
func (c *Client) GetComment(ctx context.Context, id string) (model.Comment, error) {
	var note noteResponse
	if err := c.doJSON(ctx, http.MethodGet, c.noteEndpoint(id), nil, &note); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return model.Comment{}, fmt.Errorf("%w: %s", driven.ErrCommentNotFound, id)
		}
		return model.Comment{}, fmt.Errorf("fetching note %s: %w", id, err)
	}
	return mapNote(note), nil
}

// CreateComment posts a new note on the merge request.
func (c *Client) CreateComment(ctx context.Context, body string) (model.Comment, error) {
	var note noteResponse
	payload := map[string]string{"body": body}
	if err := c.doJSON(ctx, http.MethodPost, c.mrEndpoint("/notes"), payload, &note); err != nil {
		return model.Comment{}, fmt.Errorf("creating MR note: %w", err)
	}
	return mapNote(note), nil
}

// UpdateComment replaces the body of an existing note in place.
func (c *Client) UpdateComment(ctx context.Context, id, body string) (model.Comment, error) {
	var note noteResponse
	payload := map[string]string{"body": body}
	if err := c.doJSON(ctx, http.MethodPut, c.noteEndpoint(id), payload, &note); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return model.Comment{}, fmt.Errorf("%w: %s", driven.ErrCommentNotFound, id)
		}
		return model.Comment{}, fmt.Errorf("updating note %s: %w", id, err)
	}
	return mapNote(note), nil
}

// statusError carries the HTTP status of a failed GitLab call.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gitlab API error (status %d): %s", e.status, e.body)
}

func isStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == status
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{status: resp.StatusCode, body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func mapNote(note noteResponse) model.Comment {
	return model.Comment{
		ID:   strconv.FormatInt(note.ID, 10),
		Body: note.Body,
	}
}
