// Package update probes a configured endpoint for the latest released
// version. The probe is strictly informational: every network, parse, or
// timeout failure degrades to "no update known".
package update

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Latest describes the newest published release.
type Latest struct {
	Version     string
	DownloadURL string
}

// Checker fetches the latest version from update_check_url. The endpoint
// may answer with a plain version string or a JSON release object.
type Checker struct {
	httpCli *http.Client
}

// NewChecker creates a probe bounded by the configured timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{httpCli: &http.Client{Timeout: timeout}}
}

// FetchLatest returns the newest version the endpoint reports, or nil when
// nothing could be determined. It never returns an error; the caller's flow
// must not depend on the probe.
func (c *Checker) FetchLatest(ctx context.Context, url, token string) *Latest {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	if token != "" {
		req.Header.Set("PRIVATE-TOKEN", token)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	text := strings.TrimSpace(string(body))
	if strings.Contains(resp.Header.Get("Content-Type"), "json") || strings.HasPrefix(text, "{") {
		return parseJSONPayload(body)
	}
	if text == "" {
		return nil
	}
	return &Latest{Version: text}
}

// releasePayload covers the response shapes of the common release APIs
// (GitLab tag_name, generic version/tag fields).
type releasePayload struct {
	TagName       string `json:"tag_name"`
	LatestVersion string `json:"latest_version"`
	Version       string `json:"version"`
	Tag           string `json:"tag"`
	Name          string `json:"name"`
	DownloadURL   string `json:"download_url"`
	URL           string `json:"url"`
	Assets        struct {
		Links []struct {
			URL string `json:"url"`
		} `json:"links"`
		Sources []struct {
			URL string `json:"url"`
		} `json:"sources"`
	} `json:"assets"`
}

func parseJSONPayload(raw []byte) *Latest {
	var payload releasePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	version := firstNonEmpty(payload.TagName, payload.LatestVersion, payload.Version, payload.Tag, payload.Name)
	if version == "" {
		return nil
	}

	download := firstNonEmpty(payload.DownloadURL, payload.URL)
	if download == "" && len(payload.Assets.Links) > 0 {
		download = payload.Assets.Links[0].URL
	}
	if download == "" && len(payload.Assets.Sources) > 0 {
		download = payload.Assets.Sources[0].URL
	}

	return &Latest{Version: strings.TrimSpace(version), DownloadURL: download}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// IsNewer compares dotted version strings numerically, ignoring a leading
// "v" and any pre-release suffix. Unparsable versions never count as newer.
func IsNewer(current, latest string) bool {
	cur, ok := parseVersionParts(current)
	if !ok {
		return false
	}
	lat, ok := parseVersionParts(latest)
	if !ok {
		return false
	}

	n := len(cur)
	if len(lat) > n {
		n = len(lat)
	}
	for i := 0; i < n; i++ {
		left, right := partAt(cur, i), partAt(lat, i)
		if right > left {
			return true
		}
		if right < left {
			return false
		}
	}
	return false
}

func partAt(parts []uint64, i int) uint64 {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

func parseVersionParts(raw string) ([]uint64, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "v")

	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return nil, false
	}
	s = s[start:]

	end := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if end >= 0 {
		s = s[:end]
	}

	var parts []uint64
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, false
		}
		parts = append(parts, v)
	}
	return parts, len(parts) > 0
}
