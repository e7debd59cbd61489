// Package config loads and merges prpilot configuration from an ordered list
// of JSON sources and resolves per-host tokens and per-provider run modes.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

const (
	// DefaultMaxDiffBytes caps the diff content sent to providers.
	DefaultMaxDiffBytes = 120_000

	// DefaultSystemPrompt is the fixed English review instruction used when
	// no system_prompt is configured.
	DefaultSystemPrompt = "You are a strict senior code reviewer. Output Markdown with sections: Critical, Major, Minor, Suggestions."

	// DefaultUpdateTimeoutMS bounds the optional latest-version probe.
	DefaultUpdateTimeoutMS = 1200
)

// Config is the merged configuration schema. All leaf fields are pointers so
// the merge can distinguish "unset" from zero values; read access goes
// through the accessor methods, which apply defaults.
type Config struct {
	Defaults  Defaults                  `json:"defaults"`
	Hosts     map[string]HostConfig     `json:"hosts"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// Defaults holds global review settings.
type Defaults struct {
	MaxDiffBytes      *int    `json:"max_diff_bytes,omitempty"`
	SystemPrompt      *string `json:"system_prompt,omitempty"`
	ReviewGuidePath   *string `json:"review_guide_path,omitempty"`
	CommentLanguage   *string `json:"comment_language,omitempty"`
	UpdateCheckURL    *string `json:"update_check_url,omitempty"`
	UpdateDownloadURL *string `json:"update_download_url,omitempty"`
	UpdateTimeoutMS   *int64  `json:"update_timeout_ms,omitempty"`
}

// HostConfig holds authentication and endpoint settings for one VCS host.
type HostConfig struct {
	Token    *string `json:"token,omitempty"`
	TokenEnv *string `json:"token_env,omitempty"`
	APIBase  *string `json:"api_base,omitempty"`
}

// ProviderConfig holds run settings for one provider. The same section feeds
// both modes: api_key/api_key_env/model/api_base drive API mode,
// command/args/use_stdin drive CLI mode.
type ProviderConfig struct {
	Enabled   *bool    `json:"enabled,omitempty"`
	Command   *string  `json:"command,omitempty"`
	Args      []string `json:"args,omitempty"`
	UseStdin  *bool    `json:"use_stdin,omitempty"`
	Model     *string  `json:"model,omitempty"`
	APIBase   *string  `json:"api_base,omitempty"`
	APIKey    *string  `json:"api_key,omitempty"`
	APIKeyEnv *string  `json:"api_key_env,omitempty"`
}

// knownProviders fixes the provider set and its iteration order.
var knownProviders = []string{"openai", "anthropic", "gemini"}

// defaultCommands maps provider ids to their conventional CLI binaries.
var defaultCommands = map[string]string{
	"openai":    "codex",
	"anthropic": "claude",
	"gemini":    "gemini",
}

// MaxDiffBytes returns the configured diff cap or the default.
func (c *Config) MaxDiffBytes() int {
	if c.Defaults.MaxDiffBytes != nil && *c.Defaults.MaxDiffBytes > 0 {
		return *c.Defaults.MaxDiffBytes
	}
	return DefaultMaxDiffBytes
}

// SystemPrompt returns the configured system prompt or the default.
func (c *Config) SystemPrompt() string {
	if c.Defaults.SystemPrompt != nil && strings.TrimSpace(*c.Defaults.SystemPrompt) != "" {
		return *c.Defaults.SystemPrompt
	}
	return DefaultSystemPrompt
}

// CommentLanguage resolves the report output language.
func (c *Config) CommentLanguage() model.CommentLanguage {
	if c.Defaults.CommentLanguage == nil {
		return model.LanguageEnglish
	}
	return model.ParseCommentLanguage(*c.Defaults.CommentLanguage)
}

// ReviewGuidePath returns the optional review-guide file path.
func (c *Config) ReviewGuidePath() string {
	if c.Defaults.ReviewGuidePath == nil {
		return ""
	}
	return *c.Defaults.ReviewGuidePath
}

// ResolvedSystemPrompt appends the review-guide file contents, if configured,
// to the system prompt. A configured but unreadable guide is an error.
func (c *Config) ResolvedSystemPrompt() (string, error) {
	prompt := c.SystemPrompt()

	path := c.ReviewGuidePath()
	if path == "" {
		return prompt, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading review guide at %s: %w", path, err)
	}
	guide := strings.TrimSpace(string(raw))
	if guide != "" {
		prompt += "\n\nReview guide (must follow):\n" + guide
	}
	return prompt, nil
}

// Host returns the config section for a host, if present.
func (c *Config) Host(host string) (HostConfig, bool) {
	hc, ok := c.Hosts[host]
	return hc, ok
}

// IsEnabled reports whether the provider section is enabled (default true).
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// CommandName returns the configured command or the provider's conventional
// default binary.
func (p ProviderConfig) CommandName(providerID string) string {
	if p.Command != nil && strings.TrimSpace(*p.Command) != "" {
		return *p.Command
	}
	return defaultCommands[providerID]
}

// StdinEnabled reports whether the prompt is delivered via stdin (default true).
func (p ProviderConfig) StdinEnabled() bool {
	return p.UseStdin == nil || *p.UseStdin
}

// merge folds a higher-precedence document onto c. Object sections merge
// key-by-key; set leaf fields and arrays wholly replace lower-precedence
// values.
func (c *Config) merge(other Config) {
	c.Defaults.merge(other.Defaults)

	for host, incoming := range other.Hosts {
		if c.Hosts == nil {
			c.Hosts = make(map[string]HostConfig)
		}
		existing := c.Hosts[host]
		existing.merge(incoming)
		c.Hosts[host] = existing
	}

	for id, incoming := range other.Providers {
		if c.Providers == nil {
			c.Providers = make(map[string]ProviderConfig)
		}
		existing := c.Providers[id]
		existing.merge(incoming)
		c.Providers[id] = existing
	}
}

func (d *Defaults) merge(other Defaults) {
	if other.MaxDiffBytes != nil {
		d.MaxDiffBytes = other.MaxDiffBytes
	}
	if other.SystemPrompt != nil {
		d.SystemPrompt = other.SystemPrompt
	}
	if other.ReviewGuidePath != nil {
		d.ReviewGuidePath = other.ReviewGuidePath
	}
	if other.CommentLanguage != nil {
		d.CommentLanguage = other.CommentLanguage
	}
	if other.UpdateCheckURL != nil {
		d.UpdateCheckURL = other.UpdateCheckURL
	}
	if other.UpdateDownloadURL != nil {
		d.UpdateDownloadURL = other.UpdateDownloadURL
	}
	if other.UpdateTimeoutMS != nil {
		d.UpdateTimeoutMS = other.UpdateTimeoutMS
	}
}

func (h *HostConfig) merge(other HostConfig) {
	if other.Token != nil {
		h.Token = other.Token
	}
	if other.TokenEnv != nil {
		h.TokenEnv = other.TokenEnv
	}
	if other.APIBase != nil {
		h.APIBase = other.APIBase
	}
}

func (p *ProviderConfig) merge(other ProviderConfig) {
	if other.Enabled != nil {
		p.Enabled = other.Enabled
	}
	if other.Command != nil {
		p.Command = other.Command
	}
	if other.Args != nil {
		p.Args = other.Args
	}
	if other.UseStdin != nil {
		p.UseStdin = other.UseStdin
	}
	if other.Model != nil {
		p.Model = other.Model
	}
	if other.APIBase != nil {
		p.APIBase = other.APIBase
	}
	if other.APIKey != nil {
		p.APIKey = other.APIKey
	}
	if other.APIKeyEnv != nil {
		p.APIKeyEnv = other.APIKeyEnv
	}
}
