package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"slices"
)

// LLMRequest is a single prompt forwarded to the upstream provider. APIKey is
// resolved by the caller on every invocation, never cached by the client.
type LLMRequest struct {
	APIKey  string
	Prompt  string
	Options json.RawMessage
}

type LLMResponse struct {
	Text string
}

type LLMClient interface {
	Generate(ctx context.Context, req LLMRequest) (*LLMResponse, error)
}

type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderGenAI  LLMProvider = "genai"
	LLMProviderOpenAI LLMProvider = "openai"
	LLMProviderOllama LLMProvider = "ollama"
)

var LLMProviders = []LLMProvider{LLMProviderGemini, LLMProviderGenAI, LLMProviderOpenAI, LLMProviderOllama}

const (
	DefaultGenAIModel  = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultOllamaModel = "llama3.2"
)

type LLMClientOptions struct {
	Model string
	// URL overrides the REST endpoint of the gemini provider.
	URL         string
	Schema      Schema
	RawFallback bool
	HTTPClient  *http.Client
}

func NewClient(provider LLMProvider, opts LLMClientOptions) (LLMClient, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	switch provider {
	case LLMProviderGemini:
		schema := opts.Schema
		if schema == "" {
			schema = SchemaGenerateContent
		}
		if !slices.Contains(Schemas, schema) {
			return nil, fmt.Errorf("%s: invalid schema, valid schemas are: %v", schema, Schemas)
		}
		endpoint := opts.URL
		if endpoint == "" {
			endpoint = DefaultGeminiURL
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return nil, fmt.Errorf("upstream URL is invalid: %v", err)
		}
		return newGeminiClient(httpClient, endpoint, schema, opts.RawFallback), nil
	case LLMProviderGenAI:
		return newGenAIClient(modelOrDefault(opts.Model, DefaultGenAIModel), opts.RawFallback), nil
	case LLMProviderOpenAI:
		return newOpenAIClient(modelOrDefault(opts.Model, DefaultOpenAIModel), opts.RawFallback), nil
	case LLMProviderOllama:
		ollamaEndpoint, exists := os.LookupEnv("OLLAMA_ENDPOINT")
		if !exists || ollamaEndpoint == "" {
			return nil, fmt.Errorf("OLLAMA_ENDPOINT environment variable is not set")
		}
		localEndpoint, err := url.Parse(ollamaEndpoint)
		if err != nil {
			return nil, fmt.Errorf("OLLAMA_ENDPOINT URL is invalid: %v", err)
		}
		return newOllamaClient(*localEndpoint, modelOrDefault(opts.Model, DefaultOllamaModel), opts.RawFallback), nil
	default:
		return nil, fmt.Errorf("%s: invalid provider", provider)
	}
}

func modelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
