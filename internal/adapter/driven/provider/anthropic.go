package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

const (
	defaultAnthropicURL   = "https://api.anthropic.com"
	anthropicAPIVersion   = "2023-06-01"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
)

// anthropicAgent invokes the Anthropic messages API.
type anthropicAgent struct {
	apiKey  string
	model   string
	baseURL string
	httpCli *http.Client
}

func newAnthropicAgent(apiKey, modelName, apiBase string) *anthropicAgent {
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	if apiBase == "" {
		apiBase = defaultAnthropicURL
	}
	return &anthropicAgent{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: strings.TrimRight(apiBase, "/"),
		httpCli: newAPIClient(),
	}
}

func (a *anthropicAgent) ID() string   { return "anthropic" }
func (a *anthropicAgent) Name() string { return "Claude" }

func (a *anthropicAgent) Review(ctx context.Context, prompt driven.ReviewPrompt) (driven.ProviderResponse, error) {
	body := anthropicRequest{
		Model:     a.model,
		MaxTokens: apiMaxTokens,
		System:    prompt.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt.User},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := a.httpCli.Do(httpReq)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return driven.ProviderResponse{}, apiStatusError(a.Name(), httpResp.StatusCode, respBody)
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("parsing response: %w", err)
	}

	var content strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	usage := model.TokenUsage{}
	if result.Usage != nil {
		usage = usageFromCounts(result.Usage.InputTokens, result.Usage.OutputTokens)
	}

	return driven.ProviderResponse{
		Text:  content.String(),
		Usage: usage,
	}, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   *anthropicUsage  `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}
