package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

type ollamaChatter interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

type llmClientOllama struct {
	endpoint    url.URL
	model       string
	rawFallback bool
	newClient   func(endpoint url.URL, apiKey string) ollamaChatter
}
type LlmClientOllama LLMClient

func newOllamaClient(localEndpoint url.URL, model string, rawFallback bool) LlmClientOllama {
	return &llmClientOllama{
		endpoint:    localEndpoint,
		model:       model,
		rawFallback: rawFallback,
		newClient:   newOllamaAPIClient,
	}
}

func newOllamaAPIClient(endpoint url.URL, apiKey string) ollamaChatter {
	return api.NewClient(&endpoint, &http.Client{
		Transport: &bearerTransport{key: apiKey, base: http.DefaultTransport},
	})
}

// bearerTransport lets an ollama server sitting behind an authenticating
// gateway receive the same credential as the other providers.
type bearerTransport struct {
	key  string
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.key)
	return t.base.RoundTrip(req)
}

func (ai *llmClientOllama) Generate(ctx context.Context, req LLMRequest) (*LLMResponse, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    ai.model,
		Messages: []api.Message{{Role: "user", Content: req.Prompt}},
		Stream:   &stream,
	}
	if hasOptions(req.Options) {
		if err := json.Unmarshal(req.Options, &chatReq.Options); err != nil {
			return nil, fmt.Errorf("invalid generation options: %w", err)
		}
	}

	var content strings.Builder
	err := ai.newClient(ai.endpoint, req.APIKey).Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			body := statusErr.ErrorMessage
			if body == "" {
				body = statusErr.Status
			}
			return nil, &LLMStatusError{Status: statusErr.StatusCode, Body: body}
		}
		return nil, err
	}

	text := strings.TrimSpace(content.String())
	if text == "" {
		text = fallbackText([]byte(`{}`), ai.rawFallback)
	}
	return &LLMResponse{Text: text}, nil
}
