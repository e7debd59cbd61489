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
	defaultGeminiURL   = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-2.5-pro"
)

// geminiAgent invokes the Gemini generateContent API.
type geminiAgent struct {
	apiKey  string
	model   string
	baseURL string
	httpCli *http.Client
}

func newGeminiAgent(apiKey, modelName, apiBase string) *geminiAgent {
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	if apiBase == "" {
		apiBase = defaultGeminiURL
	}
	return &geminiAgent{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: strings.TrimRight(apiBase, "/"),
		httpCli: newAPIClient(),
	}
}

func (g *geminiAgent) ID() string   { return "gemini" }
func (g *geminiAgent) Name() string { return "Gemini" }

func (g *geminiAgent) Review(ctx context.Context, prompt driven.ReviewPrompt) (driven.ProviderResponse, error) {
	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt.User}}},
		},
	}
	if prompt.System != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt.System}}}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	httpResp, err := g.httpCli.Do(httpReq)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return driven.ProviderResponse{}, apiStatusError(g.Name(), httpResp.StatusCode, respBody)
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return driven.ProviderResponse{}, fmt.Errorf("%s returned no candidates", g.Name())
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	usage := model.TokenUsage{}
	if result.UsageMetadata != nil {
		usage = usageFromCounts(result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
	}

	return driven.ProviderResponse{
		Text:  text.String(),
		Usage: usage,
	}, nil
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}
