package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/matthewmueller/aiagent"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is used when the config doesn't name one
const DefaultModel = "gpt-3.5-turbo-instruct"

// New creates a client for an OpenAI-compatible completions endpoint at
// https://host:port/v1/
func New(log *slog.Logger, cfg *aiagent.Config, hc *http.Client) *Client {
	options := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL().JoinPath("v1").String() + "/"),
		option.WithMaxRetries(0),
	}
	if hc != nil {
		options = append(options, option.WithHTTPClient(hc))
	}
	// Never fall back to OPENAI_API_KEY, the host may not be OpenAI
	if key, ok := cfg.Key(); ok {
		options = append(options, option.WithAPIKey(key))
	} else {
		options = append(options, option.WithAPIKey(""), option.WithHeaderDel("authorization"))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	oc := openai.NewClient(options...)
	return &Client{&oc, log, model}
}

// Client implements the aiagent.Provider interface for OpenAI completions
type Client struct {
	oc    *openai.Client
	log   *slog.Logger
	model string
}

var _ aiagent.Provider = (*Client)(nil)

func (c *Client) Name() string {
	return "openai"
}

// Generate sends the prompt to the completions endpoint
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.log.Debug("openai: creating completion", "model", c.model)
	completion, err := c.oc.Completions.New(ctx, openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(c.model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return "", &aiagent.RequestError{
				StatusCode: apierr.StatusCode,
				Err:        apierr,
			}
		}
		if aiagent.IsNetwork(err) {
			return "", fmt.Errorf("openai: creating completion: %w: %w", aiagent.ErrNetwork, err)
		}
		// The server answered but the body didn't decode
		return "", &aiagent.RequestError{
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("openai: creating completion: %w", err),
		}
	}
	if len(completion.Choices) == 0 {
		return "", &aiagent.RequestError{
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("openai: completion has no choices"),
		}
	}
	return completion.Choices[0].Text, nil
}
