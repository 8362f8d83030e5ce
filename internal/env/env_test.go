package env_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/matthewmueller/aiagent/internal/env"
)

func TestLoadDefaults(t *testing.T) {
	is := is.New(t)
	e, err := env.Load(nil)
	is.NoErr(err)
	is.Equal(e.APIKey, "")
	is.Equal(e.Timeout, 30*time.Second)
}

func TestLoadEnviron(t *testing.T) {
	is := is.New(t)
	e, err := env.Load([]string{"AIAGENT_API_KEY=abc", "AIAGENT_TIMEOUT=5s"})
	is.NoErr(err)
	is.Equal(e.APIKey, "abc")
	is.Equal(e.Timeout, 5*time.Second)
}

func TestLoadDotenv(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), ".env")
	is.NoErr(os.WriteFile(path, []byte("AIAGENT_API_KEY=fromfile\nAIAGENT_TIMEOUT=10s\n"), 0644))
	e, err := env.Load([]string{"AIAGENT_TIMEOUT=20s"}, path)
	is.NoErr(err)
	is.Equal(e.APIKey, "fromfile")
	is.Equal(e.Timeout, 20*time.Second) // environment wins
}

func TestLoadMissingDotenv(t *testing.T) {
	is := is.New(t)
	e, err := env.Load(nil, filepath.Join(t.TempDir(), ".env"))
	is.NoErr(err)
	is.Equal(e.Timeout, 30*time.Second)
}

func TestLoadBadTimeout(t *testing.T) {
	is := is.New(t)
	_, err := env.Load([]string{"AIAGENT_TIMEOUT=soon"})
	is.True(err != nil)
}

func TestLoadNonPositiveTimeout(t *testing.T) {
	is := is.New(t)
	_, err := env.Load([]string{"AIAGENT_TIMEOUT=0s"})
	is.True(err != nil)
	_, err = env.Load([]string{"AIAGENT_TIMEOUT=-5s"})
	is.True(err != nil)
}
