package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Bowery/prompt"
)

// ErrCanceled is returned when the user exits the prompt
var ErrCanceled = errors.New("ask: canceled")

// Asker is an interface for asking the user questions interactively.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Default returns the default asker implementation using bowery/prompt.
func Default() Asker {
	return &defaultAsker{}
}

// defaultAsker implements the Asker interface using bowery/prompt.
type defaultAsker struct{}

// Ask prompts the user with a question and returns their trimmed response.
func (a *defaultAsker) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	response, err := prompt.Basic(question+" ", true)
	if err != nil {
		if err == prompt.ErrEOF || err == prompt.ErrCTRLC {
			return "", ErrCanceled
		}
		return "", fmt.Errorf("ask: %w", err)
	}
	return strings.TrimSpace(response), nil
}
