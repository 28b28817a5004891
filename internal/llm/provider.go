// Package llm talks to hosted language models. secprep uses it to draft
// question banks from a topic description.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion per call.
type Provider interface {
	// Generate runs req and returns the model output. When req.Schema is
	// set the content is JSON that has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider identifier, e.g. "anthropic".
	Name() string

	// Model is the model ID requests are sent to.
	Model() string
}

// Request is a single generation request.
type Request struct {
	System    string
	Messages  []Message
	Schema    *Schema
	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Prompt builds a single-turn request.
func Prompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema the response must satisfy.
type Schema struct {
	// Name is kebab-case and doubles as the cache key for the compiled
	// schema, so two different definitions must not share a name.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the normalized reason generation ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	Stop    StopReason
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// finish applies the checks every provider shares once raw content is in.
func finish(req Request, resp *Response) (*Response, error) {
	if req.Schema == nil {
		return resp, nil
	}
	if resp.Stop == StopMaxTokens {
		return nil, &TruncatedError{Content: resp.Content}
	}
	if err := checkSchema(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}
