package llm

import (
	"context"
	"errors"
)

// ErrInvalidModel is returned when a caller-supplied model override does not
// exist at the provider. Callers are expected to check with errors.Is and turn
// it into a user-facing hint rather than a hard failure.
var ErrInvalidModel = errors.New("invalid model")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, Model, etc.
type Option func(*Options)

type Options struct {
	Temperature  float64
	MaxTokens    int
	Model        string // Override default model
	JSONResponse bool   // Ask the provider for a JSON object response
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithJSONResponse() Option {
	return func(o *Options) {
		o.JSONResponse = true
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
