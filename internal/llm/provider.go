// Package llm talks to hosted language models for quiz generation and
// answer explanations.
//
// A Provider turns a Request into a Response. Vendor SDKs sit behind a
// common sdkProvider, and the stack built by NewProvider adds a timeout,
// retries and request recording on top.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a response for a request.
type Provider interface {
	// Generate sends req and returns the model's output. When req.Schema
	// is set, Content is JSON that has been checked against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the model requests are sent to.
	ModelID() string
}

// Request is a single-turn or multi-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema requests structured output. Nil means free text, returned
	// as the raw response body.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is who sent a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output. Name doubles as
// the cache key for the compiled validator, so it must be unique per
// definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason says why the model stopped producing output.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a model's output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Usage counts the tokens of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Purpose labels why a request was made. It is recorded with every
// request event.
type Purpose string

const (
	PurposeExplain  Purpose = "explain"
	PurposeGenerate Purpose = "generate"
	PurposeUnknown  Purpose = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx with p.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose ctx was tagged with, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}
