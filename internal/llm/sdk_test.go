package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func jsonHandler(t *testing.T, status int, body any, seen *string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			*seen = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func trickRequest() Request {
	return Request{
		System:    "Eres un tutor de matemáticas.",
		Messages:  []Message{{Role: RoleUser, Content: "Explica 7 × 9."}},
		Schema:    stepsSchema(),
		MaxTokens: 256,
	}
}

const trickJSON = `{"title":"Los dedos","steps":["Baja el dedo 7."]}`

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func newAnthropicTest(t *testing.T, h http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "test", Model: "claude-haiku"},
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)
	return p
}

func TestAnthropicProvider(t *testing.T) {
	var body string
	p := newAnthropicTest(t, jsonHandler(t, http.StatusOK, anthropicMessage(trickJSON, "end_turn"), &body))
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	resp, err := p.Generate(context.Background(), trickRequest())
	require.NoError(t, err)
	assert.JSONEq(t, trickJSON, string(resp.Content))
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.Contains(t, body, "Eres un tutor")
}

func TestAnthropicProvider_Errors(t *testing.T) {
	apiErr := map[string]any{"type": "error", "error": map[string]any{"type": "x", "message": "no"}}

	p := newAnthropicTest(t, jsonHandler(t, http.StatusTooManyRequests, apiErr, nil))
	_, err := p.Generate(context.Background(), trickRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	p = newAnthropicTest(t, jsonHandler(t, http.StatusInternalServerError, apiErr, nil))
	_, err = p.Generate(context.Background(), trickRequest())
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)

	p = newAnthropicTest(t, jsonHandler(t, http.StatusOK, anthropicMessage(`{"title":"x"}`, "end_turn"), nil))
	_, err = p.Generate(context.Background(), trickRequest())
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)

	p = newAnthropicTest(t, jsonHandler(t, http.StatusOK, anthropicMessage(`{"title":"x`, "max_tokens"), nil))
	_, err = p.Generate(context.Background(), trickRequest())
	var mt *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &mt)
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider(t *testing.T) {
	var body string
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, chatCompletion(trickJSON, "stop"), &body))
	defer srv.Close()

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), trickRequest())
	require.NoError(t, err)
	assert.JSONEq(t, trickJSON, string(resp.Content))
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Contains(t, body, `"json_schema"`)
	assert.Contains(t, body, `"system"`)
}

func TestOpenAIProvider_Errors(t *testing.T) {
	apiErr := map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}}
	tests := []struct {
		name  string
		h     http.HandlerFunc
		check func(t *testing.T, err error)
	}{
		{"rate limit", jsonHandler(t, http.StatusTooManyRequests, apiErr, nil), func(t *testing.T, err error) {
			var rl *ErrRateLimit
			assert.ErrorAs(t, err, &rl)
		}},
		{"server error", jsonHandler(t, http.StatusBadGateway, apiErr, nil), func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			assert.ErrorAs(t, err, &unavail)
		}},
		{"no choices", jsonHandler(t, http.StatusOK, map[string]any{"id": "x", "choices": []any{}}, nil), func(t *testing.T, err error) {
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		}},
		{"truncated", jsonHandler(t, http.StatusOK, chatCompletion(`{"ti`, "length"), nil), func(t *testing.T, err error) {
			var mt *ErrMaxTokensExceeded
			assert.ErrorAs(t, err, &mt)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.h)
			defer srv.Close()
			p, err := NewOpenAIProvider(ProviderConfig{APIKey: "test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
			require.NoError(t, err)
			_, err = p.Generate(context.Background(), trickRequest())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(ProviderConfig{Model: "x"})
	assert.Error(t, err)

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		jsonHandler(t, http.StatusOK, chatCompletion(trickJSON, "stop"), nil)(w, r)
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(ProviderConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku", BaseURL: srv.URL + "/api/v1"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", p.ModelID())

	_, err = p.Generate(context.Background(), trickRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/api/v1/chat/completions"), "path = %s", path)
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(stepsSchema().Definition)

	assert.Equal(t, genai.TypeObject, s.Type)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, genai.TypeString, s.Properties["title"].Type)
	assert.Equal(t, genai.TypeArray, s.Properties["steps"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["steps"].Items.Type)
	assert.Equal(t, []string{"multiply", "divide"}, s.Properties["kind"].Enum)
	assert.ElementsMatch(t, []string{"title", "steps"}, s.Required)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "gpt-4.1-mini", resolveModel("gpt-4.1-mini", anthropicModels))
}

func TestClassify(t *testing.T) {
	cause := errors.New("x")
	var rl *ErrRateLimit
	assert.ErrorAs(t, classify(http.StatusTooManyRequests, cause), &rl)
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, classify(http.StatusServiceUnavailable, cause), &unavail)
	assert.ErrorIs(t, classify(http.StatusServiceUnavailable, cause), cause)
}
