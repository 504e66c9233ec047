package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/klemjul/novachat/internal/llm"
)

const (
	MsgMethodNotAllowed = "Method Not Allowed"
	MsgInvalidJSON      = "Invalid JSON"
	MsgEmptyPrompt      = "Empty prompt"
)

type PromptRequest struct {
	Prompt  string          `json:"prompt"`
	Options json.RawMessage `json:"options,omitempty"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HandlerOptions struct {
	Upstream llm.LLMClient
	// CredentialEnv names the environment variable holding the upstream key.
	CredentialEnv string
	LookupEnv     func(key string) (string, bool)
	Logger        *slog.Logger
}

// Handler relays one prompt per request to the upstream provider. It keeps no
// state between requests; the credential is looked up on every invocation.
type Handler struct {
	upstream      llm.LLMClient
	credentialEnv string
	lookupEnv     func(key string) (string, bool)
	logger        *slog.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	h := &Handler{
		upstream:      opts.Upstream,
		credentialEnv: opts.CredentialEnv,
		lookupEnv:     opts.LookupEnv,
		logger:        opts.Logger,
	}
	if h.lookupEnv == nil {
		h.lookupEnv = os.LookupEnv
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, MsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	req, err := decodePrompt(r.Body)
	if err != nil {
		h.logger.Debug("rejected request body", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: MsgInvalidJSON})
		return
	}

	// The credential is checked before the prompt so a misconfigured server
	// answers 500 whatever the request carries.
	apiKey, ok := h.lookupEnv(h.credentialEnv)
	if !ok || apiKey == "" {
		h.logger.Error("credential missing", "env", h.credentialEnv)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("Server misconfigured: %s missing", h.credentialEnv),
		})
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: MsgEmptyPrompt})
		return
	}

	h.logger.Info("forwarding prompt", "prompt_tokens_estimate", llm.EstimateTokens(prompt))

	res, err := h.upstream.Generate(r.Context(), llm.LLMRequest{
		APIKey:  apiKey,
		Prompt:  prompt,
		Options: req.Options,
	})
	if err != nil {
		if statusErr, ok := llm.AsStatusError(err); ok {
			h.logger.Warn("upstream rejected prompt", "status", statusErr.Status)
			writeJSON(w, upstreamStatus(statusErr.Status), ErrorResponse{Error: statusErr.Body})
			return
		}
		h.logger.Error("upstream call failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, TextResponse{Text: res.Text})
}

func decodePrompt(body io.Reader) (PromptRequest, error) {
	var req PromptRequest
	raw, err := io.ReadAll(body)
	if err != nil {
		return req, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}
	err = json.Unmarshal(raw, &req)
	return req, err
}

// upstreamStatus keeps a provider status usable as an HTTP status code.
func upstreamStatus(status int) int {
	if status < 100 || status > 999 {
		return http.StatusBadGateway
	}
	return status
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
