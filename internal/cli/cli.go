package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/livebud/cli"
	"github.com/livebud/color"
	"github.com/matthewmueller/aiagent"
	"github.com/matthewmueller/aiagent/internal/ask"
	"github.com/matthewmueller/aiagent/internal/env"
	"github.com/matthewmueller/aiagent/providers/ollama"
	"github.com/matthewmueller/aiagent/providers/openai"
)

const usage = "usage: aiagent <host> <prompt> [api_key]"

func New(log *slog.Logger) *CLI {
	return &CLI{
		log:    log,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Env:    os.Environ(),
		Dir:    ".",
		Asker:  ask.Default(),
	}
}

type CLI struct {
	log    *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
	Dir    string
	Client *http.Client // nil uses a client with the configured timeout
	Asker  ask.Asker
}

func (c *CLI) Parse(ctx context.Context, args ...string) error {
	cmd := new(Ask)
	cli := cli.New("aiagent", "send a prompt to a generation API and print the text")
	cli.Flag("config", "load the config JSON from a file").Short('c').Optional().String(&cmd.Config)
	cli.Flag("prompt-file", "load the prompt JSON from a file, - for stdin").Optional().String(&cmd.PromptFile)
	cli.Flag("port", "port to connect to").Env("AIAGENT_PORT").Optional().String(&cmd.Port)
	cli.Flag("model", "model to request").Short('m').Env("AIAGENT_MODEL").Optional().String(&cmd.Model)
	cli.Flag("provider", "wire format to use").Enum(&cmd.Provider, "generate", "openai", "ollama").Default("generate")
	cli.Flag("format", "output format").Enum(&cmd.Format, "json", "text").Default("json")
	cli.Args("args", "<host> <prompt> [api_key]").Optional().Strings(&cmd.Args)
	cli.Run(func(ctx context.Context) error {
		return c.Ask(ctx, cmd)
	})
	return cli.Parse(ctx, args...)
}

// Ask is the input for a single invocation
type Ask struct {
	Config     *string
	PromptFile *string
	Port       *string
	Model      *string
	Provider   string
	Format     string
	Args       []string
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, aiagent.ErrRequest), errors.Is(err, aiagent.ErrNetwork):
		return 2
	default:
		return 1
	}
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("cli: %w: %s\n%s", aiagent.ErrUsage, fmt.Sprintf(format, args...), usage)
}

// Ask sends the prompt and prints the generated text
func (c *CLI) Ask(ctx context.Context, in *Ask) error {
	env, err := env.Load(c.Env, filepath.Join(c.Dir, ".env"))
	if err != nil {
		return fmt.Errorf("cli: unable to load env: %w", err)
	}

	cfg, rest, err := c.loadConfig(in, env)
	if err != nil {
		return err
	}

	prompt, err := c.loadPrompt(ctx, in, rest)
	if err != nil {
		return err
	}

	hc := c.Client
	if hc == nil {
		hc = &http.Client{Timeout: env.Timeout}
	}

	provider, err := c.provider(in.Provider, cfg, hc)
	if err != nil {
		return err
	}

	// Log the provider and host we're using
	fmt.Fprintln(c.Stderr, color.Dim(provider.Name()+" "+cfg.Address()))

	agent := aiagent.New(c.log, provider, aiagent.WithTimeout(env.Timeout))
	text, err := agent.Ask(ctx, prompt)
	if err != nil {
		return err
	}

	if in.Format == "text" {
		fmt.Fprintln(c.Stdout, text)
		return nil
	}
	enc := json.NewEncoder(c.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&aiagent.Output{Text: text}); err != nil {
		return fmt.Errorf("cli: writing output: %w", err)
	}
	return nil
}

// loadConfig returns the config and the positional args left over for the
// prompt
func (c *CLI) loadConfig(in *Ask, env *env.Env) (*aiagent.Config, []string, error) {
	if in.Config != nil {
		cfg, err := aiagent.LoadConfig(aiagent.File(c.path(*in.Config)))
		if err != nil {
			return nil, nil, fmt.Errorf("cli: unable to load config: %w", err)
		}
		if len(in.Args) > 1 {
			return nil, nil, usageError("expected at most a prompt with --config, got %d args", len(in.Args))
		}
		if in.Port != nil {
			cfg.Port = *in.Port
		}
		if in.Model != nil {
			cfg.Model = *in.Model
		}
		if cfg.APIKey == nil && env.APIKey != "" {
			cfg.APIKey = &env.APIKey
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("cli: unable to load config: %w", err)
		}
		return cfg, in.Args, nil
	}

	// Without a config file: <host> <prompt> [api_key], or <host> [api_key]
	// when the prompt comes from --prompt-file
	least, most := 2, 3
	if in.PromptFile != nil {
		least, most = 1, 2
	}
	if len(in.Args) < least || len(in.Args) > most {
		return nil, nil, usageError("expected %d to %d args, got %d", least, most, len(in.Args))
	}

	configJSON := map[string]any{
		"host": in.Args[0],
		"port": aiagent.DefaultPort,
	}
	if in.Port != nil {
		configJSON["port"] = *in.Port
	}
	if in.Model != nil {
		configJSON["model"] = *in.Model
	}
	rest := in.Args[1:]
	if len(in.Args) == most {
		configJSON["api_key"] = in.Args[most-1]
		rest = in.Args[1 : most-1]
	} else if env.APIKey != "" {
		configJSON["api_key"] = env.APIKey
	}

	data, err := json.Marshal(configJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("cli: encoding config: %w", err)
	}
	cfg, err := aiagent.LoadConfig(aiagent.String(string(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("cli: unable to load config: %w", err)
	}
	return cfg, rest, nil
}

func (c *CLI) loadPrompt(ctx context.Context, in *Ask, rest []string) (string, error) {
	if in.PromptFile != nil {
		if len(rest) > 0 {
			return "", usageError("prompt given both as an argument and with --prompt-file")
		}
		src := aiagent.File(c.path(*in.PromptFile))
		if *in.PromptFile == "-" {
			src = aiagent.Reader("<stdin>", c.Stdin)
		}
		prompt, err := aiagent.LoadPrompt(src)
		if err != nil {
			return "", fmt.Errorf("cli: unable to load prompt: %w", err)
		}
		return prompt, nil
	}

	if len(rest) == 1 {
		data, err := json.Marshal(map[string]string{"prompt": rest[0]})
		if err != nil {
			return "", fmt.Errorf("cli: encoding prompt: %w", err)
		}
		prompt, err := aiagent.LoadPrompt(aiagent.String(string(data)))
		if err != nil {
			return "", fmt.Errorf("cli: unable to load prompt: %w", err)
		}
		return prompt, nil
	}

	// Nothing given, ask for it
	if c.Asker == nil {
		return "", usageError("missing prompt")
	}
	prompt, err := c.Asker.Ask(ctx, "prompt>")
	if err != nil {
		if errors.Is(err, ask.ErrCanceled) {
			return "", usageError("missing prompt")
		}
		return "", fmt.Errorf("cli: unable to read prompt: %w: %w", aiagent.ErrIO, err)
	}
	if err := aiagent.ValidatePrompt(prompt); err != nil {
		return "", fmt.Errorf("cli: unable to load prompt: %w", err)
	}
	return prompt, nil
}

func (c *CLI) provider(name string, cfg *aiagent.Config, hc *http.Client) (aiagent.Provider, error) {
	switch name {
	case "", "generate":
		return aiagent.NewGenerator(c.log, cfg, hc), nil
	case "openai":
		return openai.New(c.log, cfg, hc), nil
	case "ollama":
		return ollama.New(c.log, cfg, hc), nil
	default:
		return nil, usageError("unknown provider %q", name)
	}
}

func (c *CLI) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
