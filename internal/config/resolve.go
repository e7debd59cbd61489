package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ProviderMode is the invocation strategy chosen for a provider.
type ProviderMode string

const (
	// ModeAPI invokes the provider over its HTTPS API.
	ModeAPI ProviderMode = "api"
	// ModeCLI spawns the provider's local command.
	ModeCLI ProviderMode = "cli"
)

// TokenResolution records how a host token resolved. Source is a label such
// as "inline" or "env:GITHUB_TOKEN (missing)"; the token value itself is
// never logged or inspected beyond presence.
type TokenResolution struct {
	Token  string
	Source string
}

// Resolved reports whether a non-empty token was found.
func (r TokenResolution) Resolved() bool { return r.Token != "" }

// ResolveHostToken resolves the token for one host section: the inline value
// wins, then the named environment variable.
func ResolveHostToken(hc HostConfig, ok bool) TokenResolution {
	if !ok {
		return TokenResolution{}
	}

	if hc.Token != nil && strings.TrimSpace(*hc.Token) != "" {
		return TokenResolution{Token: strings.TrimSpace(*hc.Token), Source: "inline"}
	}

	if hc.TokenEnv == nil || strings.TrimSpace(*hc.TokenEnv) == "" {
		return TokenResolution{}
	}

	envName := strings.TrimSpace(*hc.TokenEnv)
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return TokenResolution{Token: v, Source: "env:" + envName}
	}
	return TokenResolution{Source: fmt.Sprintf("env:%s (missing)", envName)}
}

// ResolveProviderAPIKey resolves a provider's API credential: the inline
// api_key wins, then the named environment variable.
func ResolveProviderAPIKey(pc ProviderConfig) TokenResolution {
	if pc.APIKey != nil && strings.TrimSpace(*pc.APIKey) != "" {
		return TokenResolution{Token: strings.TrimSpace(*pc.APIKey), Source: "inline"}
	}

	if pc.APIKeyEnv == nil || strings.TrimSpace(*pc.APIKeyEnv) == "" {
		return TokenResolution{}
	}

	envName := strings.TrimSpace(*pc.APIKeyEnv)
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return TokenResolution{Token: v, Source: "env:" + envName}
	}
	return TokenResolution{Source: fmt.Sprintf("env:%s (missing)", envName)}
}

// ResolvedProvider is a provider ready to run, built fresh from the merged
// config on every invocation. Mode resolution is deterministic and mutually
// exclusive: API whenever a credential resolves, else CLI when the command
// is on PATH.
type ResolvedProvider struct {
	ID       string
	Name     string
	Mode     ProviderMode
	Model    string
	APIBase  string
	APIKey   string
	Command  string
	Args     []string
	UseStdin bool
}

// displayNames maps provider ids to their report display names.
var displayNames = map[string]string{
	"openai":    "OpenAI/Codex",
	"anthropic": "Claude",
	"gemini":    "Gemini",
}

// ExcludedProvider records why a configured provider cannot run.
type ExcludedProvider struct {
	ID     string
	Reason string
}

// ResolveProviders builds the runnable provider set from the merged config.
// lookPath is injectable for tests; pass exec.LookPath in production.
func ResolveProviders(cfg *Config, lookPath func(string) (string, error)) ([]ResolvedProvider, []ExcludedProvider) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var resolved []ResolvedProvider
	var excluded []ExcludedProvider

	for _, id := range knownProviders {
		// An absent section is the zero value: enabled, conventional
		// command, stdin delivery.
		pc := cfg.Providers[id]
		if !pc.IsEnabled() {
			excluded = append(excluded, ExcludedProvider{ID: id, Reason: "disabled in config"})
			continue
		}

		rp := ResolvedProvider{
			ID:       id,
			Name:     displayNames[id],
			Args:     pc.Args,
			UseStdin: pc.StdinEnabled(),
			Command:  pc.CommandName(id),
		}
		if pc.Model != nil {
			rp.Model = *pc.Model
		}
		if pc.APIBase != nil {
			rp.APIBase = *pc.APIBase
		}

		if key := ResolveProviderAPIKey(pc); key.Resolved() {
			rp.Mode = ModeAPI
			rp.APIKey = key.Token
			resolved = append(resolved, rp)
			continue
		}

		if _, err := lookPath(rp.Command); err == nil {
			rp.Mode = ModeCLI
			resolved = append(resolved, rp)
			continue
		}

		excluded = append(excluded, ExcludedProvider{
			ID:     id,
			Reason: fmt.Sprintf("no API credential and command %q not found in PATH", rp.Command),
		})
	}

	return resolved, excluded
}
