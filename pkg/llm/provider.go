package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// StreamEvent is one element of a streamed completion: either a text delta,
// or a terminal event carrying Done (and Err on failure). After a terminal
// event the channel is closed.
type StreamEvent struct {
	Delta string
	Done  bool
	Err   error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// BuildOptions folds functional options over provider defaults.
func BuildOptions(opts []Option) *Options {
	options := &Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Provider defines the contract for any completion backend. ChatStream is
// the primary call: an ordered sequence of text chunks terminated by a Done
// or error event, cancellable through the context. Chat accumulates the
// stream for callers that only need the final text.
type Provider interface {
	Chat(ctx context.Context, system string, history []Message, options ...Option) (string, error)
	ChatStream(ctx context.Context, system string, history []Message, options ...Option) (<-chan StreamEvent, error)
}

// Collect drains a stream into the full response text, returning the first
// error the stream reports.
func Collect(events <-chan StreamEvent) (string, error) {
	var out []byte
	for ev := range events {
		if ev.Err != nil {
			return "", ev.Err
		}
		out = append(out, ev.Delta...)
	}
	return string(out), nil
}
