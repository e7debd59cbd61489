// Package provider implements the ProviderAgent port. Each configured
// provider runs in exactly one of two modes, resolved from config before any
// agent is built: API mode performs one HTTPS call against the vendor API;
// CLI mode spawns the vendor's local command and captures its output.
package provider

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ericfisherdev/prpilot/internal/config"
	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// apiMaxTokens caps API-mode completion length.
const apiMaxTokens = 8192

// apiTimeout bounds one API-mode call end to end.
const apiTimeout = 120 * time.Second

func newAPIClient() *http.Client {
	return &http.Client{Timeout: apiTimeout}
}

// Build constructs one agent per resolved provider. Mode resolution already
// happened in config; this is a pure mapping.
func Build(resolved []config.ResolvedProvider) []driven.ProviderAgent {
	agents := make([]driven.ProviderAgent, 0, len(resolved))
	for _, rp := range resolved {
		if rp.Mode == config.ModeAPI {
			agents = append(agents, buildAPIAgent(rp))
			continue
		}
		agents = append(agents, newCommandAgent(rp))
	}
	return agents
}

func buildAPIAgent(rp config.ResolvedProvider) driven.ProviderAgent {
	switch rp.ID {
	case "anthropic":
		return newAnthropicAgent(rp.APIKey, rp.Model, rp.APIBase)
	case "openai":
		return newOpenAIAgent(rp.APIKey, rp.Model, rp.APIBase)
	case "gemini":
		return newGeminiAgent(rp.APIKey, rp.Model, rp.APIBase)
	default:
		// Unreachable while config.ResolveProviders fixes the provider set;
		// fall back to CLI mode rather than panic if that ever changes.
		return newCommandAgent(rp)
	}
}

func apiStatusError(name string, status int, body []byte) error {
	return fmt.Errorf("%s API error (status %d): %s", name, status, string(body))
}

func usageFromCounts(input, output int64) model.TokenUsage {
	total := input + output
	return model.TokenUsage{
		Prompt:     &input,
		Completion: &output,
		Total:      &total,
	}
}
