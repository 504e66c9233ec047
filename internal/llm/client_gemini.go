package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Schema selects the request payload shape sent to the gemini REST endpoint.
type Schema string

const (
	SchemaGenerateContent Schema = "generate-content"
	// SchemaOutputs is the older outputs:generate payload.
	SchemaOutputs Schema = "outputs"
)

var Schemas = []Schema{SchemaGenerateContent, SchemaOutputs}

const (
	DefaultGeminiURL       = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"
	outputsMaxOutputTokens = 800
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateContentPayload struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig json.RawMessage `json:"generationConfig,omitempty"`
}

type outputsPayload struct {
	Prompt struct {
		Text string `json:"text"`
	} `json:"prompt"`
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type llmClientGemini struct {
	client      httpDoer
	url         string
	schema      Schema
	rawFallback bool
}

type LLMClientGemini LLMClient

func newGeminiClient(client httpDoer, url string, schema Schema, rawFallback bool) LLMClientGemini {
	return &llmClientGemini{
		client:      client,
		url:         url,
		schema:      schema,
		rawFallback: rawFallback,
	}
}

func (ai *llmClientGemini) payload(req LLMRequest) any {
	if ai.schema == SchemaOutputs {
		p := outputsPayload{MaxOutputTokens: outputsMaxOutputTokens}
		p.Prompt.Text = req.Prompt
		return p
	}

	p := generateContentPayload{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if hasOptions(req.Options) {
		p.GenerationConfig = req.Options
	}
	return p
}

func (ai *llmClientGemini) Generate(ctx context.Context, req LLMRequest) (*LLMResponse, error) {
	body, err := json.Marshal(ai.payload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ai.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	res, err := ai.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &LLMStatusError{Status: res.StatusCode, Body: string(raw)}
	}

	text, err := Normalize(raw, ai.rawFallback)
	if err != nil {
		return nil, err
	}
	return &LLMResponse{Text: text}, nil
}

func hasOptions(options json.RawMessage) bool {
	trimmed := bytes.TrimSpace(options)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
