package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type genaiModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type genaiModelFactory func(ctx context.Context, apiKey, model string, options json.RawMessage) (genaiModel, io.Closer, error)

type llmClientGenAI struct {
	model       string
	rawFallback bool
	newModel    genaiModelFactory
}

type LLMClientGenAI LLMClient

func newGenAIClient(model string, rawFallback bool) LLMClientGenAI {
	return &llmClientGenAI{
		model:       model,
		rawFallback: rawFallback,
		newModel:    newGenAIModel,
	}
}

// newGenAIModel builds a client per request since the key is only known at
// invocation time.
func newGenAIModel(ctx context.Context, apiKey, model string, options json.RawMessage) (genaiModel, io.Closer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	generativeModel := client.GenerativeModel(model)
	if hasOptions(options) {
		if err := json.Unmarshal(options, &generativeModel.GenerationConfig); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("invalid generation options: %w", err)
		}
	}
	return generativeModel, client, nil
}

func (ai *llmClientGenAI) Generate(ctx context.Context, req LLMRequest) (*LLMResponse, error) {
	model, closer, err := ai.newModel(ctx, req.APIKey, ai.model, req.Options)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	res, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			body := apiErr.Body
			if body == "" {
				body = apiErr.Message
			}
			return nil, &LLMStatusError{Status: apiErr.Code, Body: body}
		}
		return nil, err
	}

	texts := make([]string, 0, len(res.Candidates))
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		var parts []string
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
		texts = append(texts, strings.Join(parts, "\n"))
	}

	text := strings.TrimSpace(strings.Join(texts, "\n"))
	if text == "" {
		raw, _ := json.Marshal(res)
		text = fallbackText(raw, ai.rawFallback)
	}
	return &LLMResponse{Text: text}, nil
}
