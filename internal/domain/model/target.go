package model

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrUnsupportedURL indicates the input URL matches neither a GitHub pull
// request nor a GitLab merge request shape. There is no fallback guessing.
var ErrUnsupportedURL = errors.New("unsupported review target URL")

// TargetKind distinguishes the two supported change-request shapes.
type TargetKind string

const (
	KindPullRequest  TargetKind = "pull_request"
	KindMergeRequest TargetKind = "merge_request"
)

// ReviewTarget identifies one pull/merge request to review. It is immutable
// once resolved; together with the head SHA it uniquely identifies a run.
type ReviewTarget struct {
	Kind TargetKind
	Host string

	// Owner and Repo are set for pull requests.
	Owner string
	Repo  string

	// ProjectPath is the full namespace path, set for merge requests
	// (GitLab allows arbitrary group nesting).
	ProjectPath string

	// Number is the PR number or MR iid.
	Number int

	// URL is the original input, kept for prompts and report headers.
	URL string
}

// ParseTarget resolves an input URL into a typed ReviewTarget.
// Recognized shapes:
//
//	https://<host>/<owner>/<repo>/pull/<number>
//	https://<host>/<group>/.../<project>/-/merge_requests/<iid>
//
// Anything else returns ErrUnsupportedURL.
func ParseTarget(input string) (ReviewTarget, error) {
	u, err := url.Parse(input)
	if err != nil {
		return ReviewTarget{}, fmt.Errorf("parsing target URL: %w", err)
	}
	if u.Host == "" {
		return ReviewTarget{}, fmt.Errorf("%w: missing host in %q", ErrUnsupportedURL, input)
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if t, ok := parsePullRequest(u.Hostname(), segments, input); ok {
		return t, nil
	}
	if t, ok := parseMergeRequest(u.Hostname(), segments, input); ok {
		return t, nil
	}

	return ReviewTarget{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, input)
}

// parsePullRequest matches /owner/repo/pull/<number>.
func parsePullRequest(host string, segments []string, input string) (ReviewTarget, bool) {
	if len(segments) < 4 || segments[2] != "pull" {
		return ReviewTarget{}, false
	}
	number, err := strconv.Atoi(segments[3])
	if err != nil || number <= 0 {
		return ReviewTarget{}, false
	}
	return ReviewTarget{
		Kind:   KindPullRequest,
		Host:   host,
		Owner:  segments[0],
		Repo:   segments[1],
		Number: number,
		URL:    input,
	}, true
}

// parseMergeRequest matches /group/.../project/-/merge_requests/<iid>.
func parseMergeRequest(host string, segments []string, input string) (ReviewTarget, bool) {
	sep := -1
	for i, s := range segments {
		if s == "-" {
			sep = i
			break
		}
	}
	if sep <= 0 || sep+2 >= len(segments) || segments[sep+1] != "merge_requests" {
		return ReviewTarget{}, false
	}
	iid, err := strconv.Atoi(segments[sep+2])
	if err != nil || iid <= 0 {
		return ReviewTarget{}, false
	}
	return ReviewTarget{
		Kind:        KindMergeRequest,
		Host:        host,
		ProjectPath: strings.Join(segments[:sep], "/"),
		Number:      iid,
		URL:         input,
	}, true
}
