package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLatestPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1.4.2\n"))
	}))
	defer srv.Close()

	latest := NewChecker(time.Second).FetchLatest(context.Background(), srv.URL, "")
	require.NotNil(t, latest)
	assert.Equal(t, "1.4.2", latest.Version)
	assert.Empty(t, latest.DownloadURL)
}

func TestFetchLatestGitLabRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("PRIVATE-TOKEN"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.0","assets":{"links":[{"url":"https://dl.example/prpilot"}]}}`))
	}))
	defer srv.Close()

	latest := NewChecker(time.Second).FetchLatest(context.Background(), srv.URL, "tok")
	require.NotNil(t, latest)
	assert.Equal(t, "v2.0.0", latest.Version)
	assert.Equal(t, "https://dl.example/prpilot", latest.DownloadURL)
}

func TestFetchLatestJSONVersionField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"3.1.0"}`))
	}))
	defer srv.Close()

	latest := NewChecker(time.Second).FetchLatest(context.Background(), srv.URL, "")
	require.NotNil(t, latest)
	assert.Equal(t, "3.1.0", latest.Version)
}

func TestFetchLatestSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	checker := NewChecker(time.Second)
	assert.Nil(t, checker.FetchLatest(context.Background(), srv.URL, ""))
	assert.Nil(t, checker.FetchLatest(context.Background(), "http://127.0.0.1:0/unreachable", ""))
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("1.2.3", "1.2.4"))
	assert.True(t, IsNewer("1.2.3", "v1.3.0"))
	assert.True(t, IsNewer("1.2", "1.2.1"))
	assert.False(t, IsNewer("1.2.3", "1.2.3"))
	assert.False(t, IsNewer("2.0.0", "1.9.9"))
	assert.False(t, IsNewer("1.0.0", "unversioned"))
	assert.False(t, IsNewer("garbage", "1.0.0"))
	assert.True(t, IsNewer("1.2.3", "1.3.0-beta.1"))
}
