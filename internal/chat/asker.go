package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	MsgServerError = "Server error"
	MsgNoResponse  = "No response from assistant."
)

// Asker sends one prompt to the proxy and returns the assistant text.
type Asker interface {
	Ask(ctx context.Context, prompt string, options map[string]any) (string, error)
}

type askRequest struct {
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options"`
}

type askResponse struct {
	Text string `json:"text"`
}

type ProxyClient struct {
	url    string
	client *http.Client
}

func NewProxyClient(url string, client *http.Client) *ProxyClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &ProxyClient{url: url, client: client}
}

func (c *ProxyClient) Ask(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if options == nil {
		options = map[string]any{}
	}
	body, err := json.Marshal(askRequest{Prompt: prompt, Options: options})
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read proxy response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		text := strings.TrimSpace(string(raw))
		if text == "" {
			text = MsgServerError
		}
		return "", errors.New(text)
	}

	var out askResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode proxy response: %w", err)
	}
	if out.Text == "" {
		return MsgNoResponse, nil
	}
	return out.Text, nil
}
