package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Gemini_Defaults(t *testing.T) {
	client, err := NewClient(LLMProviderGemini, LLMClientOptions{})
	require.NoError(t, err)
	assert.IsType(t, &llmClientGemini{}, client)
	assert.Equal(t, DefaultGeminiURL, client.(*llmClientGemini).url)
	assert.Equal(t, SchemaGenerateContent, client.(*llmClientGemini).schema)
}

func TestNewClient_Gemini_OutputsSchema(t *testing.T) {
	client, err := NewClient(LLMProviderGemini, LLMClientOptions{
		URL:         "https://example.test/v1beta/models/gemini:generate",
		Schema:      SchemaOutputs,
		RawFallback: true,
	})
	require.NoError(t, err)
	gemini := client.(*llmClientGemini)
	assert.Equal(t, "https://example.test/v1beta/models/gemini:generate", gemini.url)
	assert.Equal(t, SchemaOutputs, gemini.schema)
	assert.True(t, gemini.rawFallback)
}

func TestNewClient_Gemini_InvalidSchema(t *testing.T) {
	client, err := NewClient(LLMProviderGemini, LLMClientOptions{Schema: "instances"})
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instances: invalid schema")
}

func TestNewClient_Gemini_InvalidURL(t *testing.T) {
	client, err := NewClient(LLMProviderGemini, LLMClientOptions{URL: "not a url"})
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream URL is invalid")
}

func TestNewClient_GenAI_DefaultModel(t *testing.T) {
	client, err := NewClient(LLMProviderGenAI, LLMClientOptions{})
	require.NoError(t, err)
	assert.IsType(t, &llmClientGenAI{}, client)
	assert.Equal(t, DefaultGenAIModel, client.(*llmClientGenAI).model)
}

func TestNewClient_OpenAI_WithModel(t *testing.T) {
	client, err := NewClient(LLMProviderOpenAI, LLMClientOptions{Model: "gpt-4-o"})
	require.NoError(t, err)
	assert.IsType(t, &llmClientOpenAi{}, client)
	assert.Equal(t, client.(*llmClientOpenAi).model, "gpt-4-o")
}

func TestNewClient_Ollama_MissingEndpoint(t *testing.T) {
	t.Setenv("OLLAMA_ENDPOINT", "")

	client, err := NewClient(LLMProviderOllama, LLMClientOptions{Model: "llama2"})
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Equal(t, "OLLAMA_ENDPOINT environment variable is not set", err.Error())
}

func TestNewClient_Ollama_InvalidURL(t *testing.T) {
	t.Setenv("OLLAMA_ENDPOINT", "http://bad::url")

	client, err := NewClient(LLMProviderOllama, LLMClientOptions{Model: "llama2"})
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OLLAMA_ENDPOINT URL is invalid")
}

func TestNewClient_Ollama_ValidURL(t *testing.T) {
	t.Setenv("OLLAMA_ENDPOINT", "http://localhost:11434")

	client, err := NewClient(LLMProviderOllama, LLMClientOptions{})
	require.NoError(t, err)
	assert.IsType(t, &llmClientOllama{}, client)
	assert.Equal(t, DefaultOllamaModel, client.(*llmClientOllama).model)
}

func TestNewClient_InvalidProvider(t *testing.T) {
	client, err := NewClient(LLMProvider("unknown"), LLMClientOptions{Model: "x"})
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Equal(t, "unknown: invalid provider", err.Error())
}
