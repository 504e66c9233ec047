package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiChatCompletions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type llmClientOpenAi struct {
	client      openaiChatCompletions
	model       string
	rawFallback bool
}
type LLMClientOpenAI LLMClient

func newOpenAIClient(model string, rawFallback bool) LLMClientOpenAI {
	client := openai.NewClient()
	return &llmClientOpenAi{
		client:      &client.Chat.Completions,
		model:       model,
		rawFallback: rawFallback,
	}
}

// requestOptions attaches the per-invocation key and spreads the caller's
// opaque options into the request body.
func (ai *llmClientOpenAi) requestOptions(req LLMRequest) ([]option.RequestOption, error) {
	opts := []option.RequestOption{option.WithAPIKey(req.APIKey)}
	if !hasOptions(req.Options) {
		return opts, nil
	}

	var extra map[string]any
	if err := json.Unmarshal(req.Options, &extra); err != nil {
		return nil, fmt.Errorf("invalid generation options: %w", err)
	}
	for key, value := range extra {
		opts = append(opts, option.WithJSONSet(key, value))
	}
	return opts, nil
}

func (ai *llmClientOpenAi) Generate(ctx context.Context, req LLMRequest) (*LLMResponse, error) {
	opts, err := ai.requestOptions(req)
	if err != nil {
		return nil, err
	}

	res, err := ai.client.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: ai.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(req.Prompt),
			},
			N: openai.Int(1),
		},
		opts...,
	)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			body := apiErr.RawJSON()
			if body == "" {
				body = apiErr.Message
			}
			return nil, &LLMStatusError{Status: apiErr.StatusCode, Body: body}
		}
		return nil, err
	}

	texts := make([]string, 0, len(res.Choices))
	for _, choice := range res.Choices {
		texts = append(texts, choice.Message.Content)
	}

	text := strings.TrimSpace(strings.Join(texts, "\n"))
	if text == "" {
		text = fallbackText([]byte(res.RawJSON()), ai.rawFallback)
	}
	return &LLMResponse{Text: text}, nil
}
