package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klemjul/novachat/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLLMClient struct {
	mock.Mock
}

func (c *MockLLMClient) Generate(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
	args := c.Called(ctx, req)
	resVal := args.Get(0)
	if resVal == nil {
		return nil, args.Error(1)
	}
	return resVal.(*llm.LLMResponse), args.Error(1)
}

const testCredentialEnv = "GEMINI_API_KEY"

func withKey(key string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if name != testCredentialEnv || key == "" {
			return "", false
		}
		return key, true
	}
}

func newTestHandler(upstream llm.LLMClient, lookup func(string) (string, bool)) *Handler {
	return NewHandler(HandlerOptions{
		Upstream:      upstream,
		CredentialEnv: testCredentialEnv,
		LookupEnv:     lookup,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/gemini", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var res ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res.Error
}

func TestHandler_RejectsNonPostMethods(t *testing.T) {
	upstream := new(MockLLMClient)
	h := newTestHandler(upstream, withKey("secret"))

	for _, method := range []string{
		http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead,
	} {
		t.Run(method, func(t *testing.T) {
			rr := serve(h, method, `{"prompt":"Hi"}`)
			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
		})
	}
	upstream.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandler_MalformedJSON(t *testing.T) {
	upstream := new(MockLLMClient)
	h := newTestHandler(upstream, withKey("secret"))

	for _, body := range []string{`{`, `not json`, `{"prompt":}`, `{"prompt": 42}`, `"prompt"x`} {
		t.Run(body, func(t *testing.T) {
			rr := serve(h, http.MethodPost, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, MsgInvalidJSON, decodeError(t, rr))
		})
	}
	upstream.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandler_EmptyPrompt(t *testing.T) {
	upstream := new(MockLLMClient)
	h := newTestHandler(upstream, withKey("secret"))

	for _, body := range []string{``, `{}`, `null`, `{"prompt":""}`, `{"prompt":"   \n\t "}`} {
		t.Run(body, func(t *testing.T) {
			rr := serve(h, http.MethodPost, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, MsgEmptyPrompt, decodeError(t, rr))
		})
	}
	upstream.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandler_MissingCredential(t *testing.T) {
	upstream := new(MockLLMClient)
	h := newTestHandler(upstream, withKey(""))

	for _, body := range []string{`{"prompt":"Hi"}`, `{"prompt":"  "}`, `{}`} {
		t.Run(body, func(t *testing.T) {
			rr := serve(h, http.MethodPost, body)
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, "Server misconfigured: GEMINI_API_KEY missing", decodeError(t, rr))
		})
	}
	upstream.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandler_CredentialReadFromEnvironmentPerRequest(t *testing.T) {
	upstream := new(MockLLMClient)
	upstream.On("Generate", mock.Anything, llm.LLMRequest{APIKey: "rotated", Prompt: "Hi"}).
		Return(&llm.LLMResponse{Text: "ok"}, nil)
	h := NewHandler(HandlerOptions{
		Upstream:      upstream,
		CredentialEnv: testCredentialEnv,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	t.Setenv(testCredentialEnv, "")
	rr := serve(h, http.MethodPost, `{"prompt":"Hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	t.Setenv(testCredentialEnv, "rotated")
	rr = serve(h, http.MethodPost, `{"prompt":"Hi"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	upstream.AssertExpectations(t)
}

func TestHandler_Success(t *testing.T) {
	upstream := new(MockLLMClient)
	upstream.On("Generate", mock.Anything, llm.LLMRequest{
		APIKey:  "secret",
		Prompt:  "Hi there",
		Options: json.RawMessage(`{"temperature":0.3}`),
	}).Return(&llm.LLMResponse{Text: "hello"}, nil)
	h := newTestHandler(upstream, withKey("secret"))

	rr := serve(h, http.MethodPost, `{"prompt":"  Hi there  ","options":{"temperature":0.3}}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"text":"hello"}`, rr.Body.String())
	upstream.AssertExpectations(t)
}

func TestHandler_UpstreamStatusPassthrough(t *testing.T) {
	upstream := new(MockLLMClient)
	upstream.On("Generate", mock.Anything, mock.Anything).
		Return(nil, &llm.LLMStatusError{Status: http.StatusServiceUnavailable, Body: "rate limited"})
	h := newTestHandler(upstream, withKey("secret"))

	rr := serve(h, http.MethodPost, `{"prompt":"Hi"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"error":"rate limited"}`, rr.Body.String())
}

func TestHandler_UpstreamStatusOutOfRange(t *testing.T) {
	upstream := new(MockLLMClient)
	upstream.On("Generate", mock.Anything, mock.Anything).
		Return(nil, &llm.LLMStatusError{Status: 0, Body: "unknown"})
	h := newTestHandler(upstream, withKey("secret"))

	rr := serve(h, http.MethodPost, `{"prompt":"Hi"}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "unknown", decodeError(t, rr))
}

func TestHandler_UpstreamException(t *testing.T) {
	upstream := new(MockLLMClient)
	upstream.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused"))
	h := newTestHandler(upstream, withKey("secret"))

	rr := serve(h, http.MethodPost, `{"prompt":"Hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "dial tcp: connection refused", decodeError(t, rr))
}

func TestHandler_WithGeminiUpstream(t *testing.T) {
	var authorization string
	upstreamServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		w.Write([]byte(`{"candidates":[{"text":"hello"}]}`))
	}))
	defer upstreamServer.Close()

	client, err := llm.NewClient(llm.LLMProviderGemini, llm.LLMClientOptions{
		URL:        upstreamServer.URL,
		HTTPClient: upstreamServer.Client(),
	})
	require.NoError(t, err)
	h := newTestHandler(client, withKey("secret"))

	rr := serve(h, http.MethodPost, `{"prompt":"Hi"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":"hello"}`, rr.Body.String())
	assert.Equal(t, "Bearer secret", authorization)
}

func TestDecodePrompt(t *testing.T) {
	req, err := decodePrompt(bytes.NewReader([]byte(`{"prompt":"Hi","options":{"a":1}}`)))
	require.NoError(t, err)
	assert.Equal(t, "Hi", req.Prompt)
	assert.JSONEq(t, `{"a":1}`, string(req.Options))
}
