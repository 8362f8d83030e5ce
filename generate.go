package aiagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// GeneratePath is the endpoint the generate provider posts to
const GeneratePath = "/api/generate"

const maxResponseSize = 10 * 1024 * 1024 // 10MB

// NewGenerator creates the default provider. It posts {"prompt": ...} to
// https://host:port/api/generate. A nil client uses one with DefaultTimeout.
func NewGenerator(log *slog.Logger, cfg *Config, hc *http.Client) *Generator {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Generator{log, cfg, hc}
}

// Generator implements Provider over plain HTTPS + JSON
type Generator struct {
	log *slog.Logger
	cfg *Config
	hc  *http.Client
}

var _ Provider = (*Generator)(nil)

func (g *Generator) Name() string {
	return "generate"
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// Generate performs the request and extracts the text from the response
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(&generateRequest{
		Prompt: prompt,
		Model:  g.cfg.Model,
	})
	if err != nil {
		return "", fmt.Errorf("generate: marshaling request: %w", err)
	}

	u := g.cfg.BaseURL().JoinPath(GeneratePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("generate: creating request: %w: %w", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key, ok := g.cfg.Key(); ok {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	g.log.Debug("generate: sending request", "url", u.String(), "bytes", len(payload))
	res, err := g.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w: %w", ErrNetwork, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("generate: reading response: %w: %w", ErrNetwork, err)
	}
	g.log.Debug("generate: received response", "status", res.StatusCode, "bytes", len(body))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &RequestError{
			StatusCode: res.StatusCode,
			Body:       truncate(body),
		}
	}

	text, err := Extract(body)
	if err != nil {
		return "", &RequestError{
			StatusCode: res.StatusCode,
			Body:       truncate(body),
			Err:        err,
		}
	}
	return text, nil
}
