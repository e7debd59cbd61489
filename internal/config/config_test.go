package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func TestDefaults(t *testing.T) {
	var cfg Config

	assert.Equal(t, DefaultMaxDiffBytes, cfg.MaxDiffBytes())
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt())
	assert.Equal(t, model.LanguageEnglish, cfg.CommentLanguage())
	assert.Empty(t, cfg.ReviewGuidePath())
}

func TestMergeScalarOverwrite(t *testing.T) {
	var base Config
	base.merge(Config{Defaults: Defaults{MaxDiffBytes: intPtr(1000), SystemPrompt: strPtr("low")}})
	base.merge(Config{Defaults: Defaults{SystemPrompt: strPtr("high")}})

	assert.Equal(t, 1000, base.MaxDiffBytes(), "unset field in higher source must not clobber")
	assert.Equal(t, "high", base.SystemPrompt())
}

func TestMergeHostsKeyByKey(t *testing.T) {
	var base Config
	base.merge(Config{Hosts: map[string]HostConfig{
		"github.com": {TokenEnv: strPtr("GH_A"), APIBase: strPtr("https://a.example")},
		"gitlab.com": {TokenEnv: strPtr("GL_A")},
	}})
	base.merge(Config{Hosts: map[string]HostConfig{
		"github.com": {TokenEnv: strPtr("GH_B")},
	}})

	gh, ok := base.Host("github.com")
	require.True(t, ok)
	assert.Equal(t, "GH_B", *gh.TokenEnv)
	assert.Equal(t, "https://a.example", *gh.APIBase, "untouched sibling field survives the merge")

	gl, ok := base.Host("gitlab.com")
	require.True(t, ok)
	assert.Equal(t, "GL_A", *gl.TokenEnv)
}

func TestMergeProviderArraysReplaced(t *testing.T) {
	var base Config
	base.merge(Config{Providers: map[string]ProviderConfig{
		"anthropic": {Args: []string{"-p", "one"}, Model: strPtr("m1")},
	}})
	base.merge(Config{Providers: map[string]ProviderConfig{
		"anthropic": {Args: []string{"--print"}},
	}})

	pc := base.Providers["anthropic"]
	assert.Equal(t, []string{"--print"}, pc.Args, "arrays are wholly replaced, not appended")
	assert.Equal(t, "m1", *pc.Model)
}

func TestMergeOrderSensitivity(t *testing.T) {
	a := Config{Defaults: Defaults{CommentLanguage: strPtr("ko")}}
	b := Config{Defaults: Defaults{CommentLanguage: strPtr("en")}}
	c := Config{Providers: map[string]ProviderConfig{"gemini": {Enabled: boolPtr(false)}}}

	var folded Config
	for _, src := range []Config{a, b, c} {
		folded.merge(src)
	}

	assert.Equal(t, model.LanguageEnglish, folded.CommentLanguage())
	assert.False(t, folded.Providers["gemini"].IsEnabled())
}

func TestProviderConfigDefaults(t *testing.T) {
	var pc ProviderConfig
	assert.True(t, pc.IsEnabled())
	assert.True(t, pc.StdinEnabled())
	assert.Equal(t, "claude", pc.CommandName("anthropic"))
	assert.Equal(t, "codex", pc.CommandName("openai"))
	assert.Equal(t, "gemini", pc.CommandName("gemini"))
}

func TestResolvedSystemPromptWithGuide(t *testing.T) {
	dir := t.TempDir()
	guidePath := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(guidePath, []byte("Focus on error handling.\n"), 0o644))

	cfg := Config{Defaults: Defaults{ReviewGuidePath: &guidePath}}
	prompt, err := cfg.ResolvedSystemPrompt()
	require.NoError(t, err)
	assert.Contains(t, prompt, DefaultSystemPrompt)
	assert.Contains(t, prompt, "Review guide (must follow):\nFocus on error handling.")
}

func TestResolvedSystemPromptMissingGuide(t *testing.T) {
	cfg := Config{Defaults: Defaults{ReviewGuidePath: strPtr("/nonexistent/guide.md")}}
	_, err := cfg.ResolvedSystemPrompt()
	assert.Error(t, err)
}
