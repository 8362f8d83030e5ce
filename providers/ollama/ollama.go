package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/matthewmueller/aiagent"
	ollama "github.com/ollama/ollama/api"
)

// New creates an Ollama-compatible client for https://host:port
func New(log *slog.Logger, cfg *aiagent.Config, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: aiagent.DefaultTimeout}
	}
	if key, ok := cfg.Key(); ok {
		hc = withBearer(hc, key)
	}
	oc := ollama.NewClient(cfg.BaseURL(), hc)
	return &Client{oc, log, cfg.Model}
}

// Client implements the aiagent.Provider interface for Ollama
type Client struct {
	oc    *ollama.Client
	log   *slog.Logger
	model string
}

var _ aiagent.Provider = (*Client)(nil)

func (c *Client) Name() string {
	return "ollama"
}

// Generate sends a non-streaming generate request
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.model == "" {
		return "", fmt.Errorf("ollama: %w: required model is empty", aiagent.ErrValidation)
	}

	stream := false
	req := &ollama.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
	}

	c.log.Debug("ollama: generating", "model", c.model)
	var out strings.Builder
	err := c.oc.Generate(ctx, req, func(res ollama.GenerateResponse) error {
		out.WriteString(res.Response)
		return nil
	})
	if err != nil {
		var statusErr ollama.StatusError
		if errors.As(err, &statusErr) {
			return "", &aiagent.RequestError{
				StatusCode: statusErr.StatusCode,
				Body:       statusErr.ErrorMessage,
			}
		}
		if aiagent.IsNetwork(err) {
			return "", fmt.Errorf("ollama: generate: %w: %w", aiagent.ErrNetwork, err)
		}
		// A 2xx body that didn't decode, or one carrying an error field
		return "", &aiagent.RequestError{
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("ollama: generate: %w", err),
		}
	}
	return out.String(), nil
}

// withBearer returns a copy of hc that sets the authorization header on
// every request
func withBearer(hc *http.Client, key string) *http.Client {
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	clone := *hc
	clone.Transport = &bearer{transport, key}
	return &clone
}

type bearer struct {
	next http.RoundTripper
	key  string
}

func (b *bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.key)
	return b.next.RoundTrip(r)
}
