package driven

import (
	"context"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

// ReviewPrompt is the input to one provider invocation. System may be empty
// (the reaction pass sends a self-contained user prompt). Both parts are
// always authored in English.
type ReviewPrompt struct {
	System string
	User   string
}

// ProviderResponse is the successful outcome of one provider invocation.
type ProviderResponse struct {
	Text  string
	Usage model.TokenUsage
}

// ProviderAgent is the driven port for one AI reviewer. Implementations own
// all wire/process details, including the resolved API-vs-CLI strategy and
// the CLI stdin retry. A returned error is scoped to this provider only.
type ProviderAgent interface {
	// ID is the stable config key of the provider ("anthropic", ...).
	ID() string

	// Name is the display name used in report sections.
	Name() string

	// Review invokes the provider once with the given prompt.
	Review(ctx context.Context, prompt ReviewPrompt) (ProviderResponse, error)
}
