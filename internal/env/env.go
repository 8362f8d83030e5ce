package env

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	env11 "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds environment configuration for the client
type Env struct {
	APIKey  string        `env:"AIAGENT_API_KEY"`
	Timeout time.Duration `env:"AIAGENT_TIMEOUT" envDefault:"30s"`
}

// Load reads the environment. Variables from the optional dotenv files are
// used only when they aren't already set in environ.
func Load(environ []string, dotenvs ...string) (*Env, error) {
	vars := map[string]string{}
	for _, path := range dotenvs {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for k, v := range values {
			vars[k] = v
		}
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		vars[k] = v
	}
	env := new(Env)
	if err := env11.ParseWithOptions(env, env11.Options{Environment: vars}); err != nil {
		return nil, err
	}
	if env.Timeout <= 0 {
		return nil, fmt.Errorf("env: AIAGENT_TIMEOUT must be positive, got %s", env.Timeout)
	}
	return env, nil
}
