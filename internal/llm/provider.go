package llm

import (
	"context"
	"encoding/json"
)

// Provider turns a prompt into JSON. When the request names a Schema the
// returned content has been validated against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is one prompt. Tricks send a system prompt and a single user
// message.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema // nil returns plain text wrapped as a JSON string
	MaxTokens   int
	Temperature float64 // 0..1
}

// Role is who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema the reply must satisfy. Providers pass it to
// their native structured output mode.
type Schema struct {
	Name        string // e.g. "math-trick"
	Description string
	Definition  map[string]any
}

// Response is a normalized provider reply.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // model that actually served the request
	StopReason string // "end", "max_tokens" or "error"
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish validates content against the request schema and assembles the
// normalized response.
func finish(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// resolveModel maps a short alias to a provider model id; other names
// pass through unchanged.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
