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
	defaultOpenAIURL   = "https://api.openai.com"
	defaultOpenAIModel = "gpt-4o"
)

// openaiAgent invokes the OpenAI chat completions API.
type openaiAgent struct {
	apiKey  string
	model   string
	baseURL string
	httpCli *http.Client
}

func newOpenAIAgent(apiKey, modelName, apiBase string) *openaiAgent {
	if modelName == "" {
		modelName = defaultOpenAIModel
	}
	if apiBase == "" {
		apiBase = defaultOpenAIURL
	}
	return &openaiAgent{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: strings.TrimRight(apiBase, "/"),
		httpCli: newAPIClient(),
	}
}

func (o *openaiAgent) ID() string   { return "openai" }
func (o *openaiAgent) Name() string { return "OpenAI/Codex" }

func (o *openaiAgent) Review(ctx context.Context, prompt driven.ReviewPrompt) (driven.ProviderResponse, error) {
	var messages []openaiMessage
	if prompt.System != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: prompt.User})

	payload, err := json.Marshal(openaiRequest{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: apiMaxTokens,
	})
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.httpCli.Do(httpReq)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return driven.ProviderResponse{}, apiStatusError(o.Name(), httpResp.StatusCode, respBody)
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Choices) == 0 {
		return driven.ProviderResponse{}, fmt.Errorf("%s returned no choices", o.Name())
	}

	usage := model.TokenUsage{}
	if result.Usage != nil {
		usage = usageFromCounts(result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}

	return driven.ProviderResponse{
		Text:  result.Choices[0].Message.Content,
		Usage: usage,
	}, nil
}

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Usage *openaiUsage `json:"usage"`
}

type openaiUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}
