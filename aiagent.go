// Package aiagent sends a single prompt to a remote generation API and
// returns the generated text.
package aiagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds the single request made by Ask
const DefaultTimeout = 30 * time.Second

// Provider generates text for a prompt over some wire format
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Option configures an Agent
type Option func(*Agent)

// WithTimeout sets how long Ask waits for the response. Values <= 0 fall
// back to DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Agent) {
		a.timeout = timeout
	}
}

// New creates an Agent that asks the given provider
func New(log *slog.Logger, provider Provider, options ...Option) *Agent {
	a := &Agent{
		log:      log,
		provider: provider,
		timeout:  DefaultTimeout,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Agent runs one request/response cycle per Ask
type Agent struct {
	log      *slog.Logger
	provider Provider
	timeout  time.Duration
}

// Ask sends the prompt and returns the extracted text. It makes at most one
// request and never retries.
func (a *Agent) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return "", err
	}
	timeout := a.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()
	text, err := a.provider.Generate(ctx, prompt)
	if err != nil {
		// Deadline errors can surface unwrapped from some transports
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrNetwork) && !errors.Is(err, ErrRequest) {
			err = fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		return "", fmt.Errorf("aiagent: %s: %w", a.provider.Name(), err)
	}
	a.log.Debug("aiagent: generated text",
		"provider", a.provider.Name(),
		"duration", time.Since(start),
		"length", len(text),
	)
	return text, nil
}
