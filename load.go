package aiagent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultPort is used when the config doesn't specify one
const DefaultPort = "443"

// Config holds the connection parameters for the remote service
type Config struct {
	Host   string
	Port   string
	APIKey *string // nil when not provided
	Model  string  // optional, only used by some providers
}

// Address returns host:port. An empty port means DefaultPort.
func (c *Config) Address() string {
	port := c.Port
	if port == "" {
		port = DefaultPort
	}
	return net.JoinHostPort(strings.TrimSpace(c.Host), port)
}

// BaseURL returns the https URL of the configured host
func (c *Config) BaseURL() *url.URL {
	return &url.URL{
		Scheme: "https",
		Host:   c.Address(),
	}
}

// Key returns the API key and whether one should be sent
func (c *Config) Key() (string, bool) {
	if c.APIKey == nil || *c.APIKey == "" {
		return "", false
	}
	return *c.APIKey, true
}

// Validate checks a config that was built directly instead of loaded
func (c *Config) Validate() error {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		return fmt.Errorf("aiagent: %w: host is required", ErrValidation)
	}
	if strings.Contains(host, "://") || strings.ContainsAny(host, "/?#") {
		return fmt.Errorf("aiagent: %w: host %q must not include a scheme or path", ErrValidation, host)
	}
	if strings.HasPrefix(host, "[") {
		return fmt.Errorf("aiagent: %w: host %q must not be bracketed, put the port in port", ErrValidation, host)
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return fmt.Errorf("aiagent: %w: host %q includes a port, put the port in port", ErrValidation, host)
	}
	if c.Port == "" {
		return nil
	}
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("aiagent: %w: invalid port %q", ErrValidation, c.Port)
	}
	return nil
}

// ValidatePrompt checks a prompt that was built directly instead of loaded
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("aiagent: %w: prompt is required", ErrValidation)
	}
	return nil
}

// Source is where JSON input is read from
type Source struct {
	name string
	read func() ([]byte, error)
}

func (s Source) String() string {
	return s.name
}

// File reads JSON from a file path
func File(path string) Source {
	return Source{path, func() ([]byte, error) {
		return os.ReadFile(path)
	}}
}

// String reads JSON from a literal string
func String(text string) Source {
	return Source{"<string>", func() ([]byte, error) {
		return []byte(text), nil
	}}
}

// Reader reads JSON from r, like stdin
func Reader(name string, r io.Reader) Source {
	return Source{name, func() ([]byte, error) {
		return io.ReadAll(r)
	}}
}

const configSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["host"],
	"properties": {
		"host": { "type": "string", "minLength": 1 },
		"port": { "type": "string", "pattern": "^[0-9]{0,5}$" },
		"api_key": { "type": ["string", "null"] },
		"model": { "type": "string" }
	}
}`

const promptSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["prompt"],
	"properties": {
		"prompt": { "type": "string", "minLength": 1 }
	}
}`

var (
	configValidator = compile("config.json", configSchema)
	promptValidator = compile("prompt.json", promptSchema)
)

func compile(name, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("aiagent: adding schema %s: %v", name, err))
	}
	s, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("aiagent: compiling schema %s: %v", name, err))
	}
	return s
}

// loadJSON reads src, checks it against the schema and decodes it into v
func loadJSON(src Source, schema *jsonschema.Schema, v any) error {
	data, err := src.read()
	if err != nil {
		return fmt.Errorf("aiagent: reading %s: %w: %w", src, ErrIO, err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("aiagent: parsing %s: %w: %w", src, ErrParse, err)
	}
	if dec.More() {
		return fmt.Errorf("aiagent: parsing %s: %w: unexpected data after JSON value", src, ErrParse)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("aiagent: validating %s: %w: %w", src, ErrValidation, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("aiagent: decoding %s: %w: %w", src, ErrParse, err)
	}
	return nil
}

type configJSON struct {
	Host   string  `json:"host"`
	Port   string  `json:"port"`
	APIKey *string `json:"api_key"`
	Model  string  `json:"model"`
}

// LoadConfig loads the config from src
func LoadConfig(src Source) (*Config, error) {
	var in configJSON
	if err := loadJSON(src, configValidator, &in); err != nil {
		return nil, err
	}
	cfg := &Config{
		Host:   strings.TrimSpace(in.Host),
		Port:   in.Port,
		APIKey: in.APIKey,
		Model:  in.Model,
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type promptJSON struct {
	Prompt string `json:"prompt"`
}

// LoadPrompt loads the prompt from src
func LoadPrompt(src Source) (string, error) {
	var in promptJSON
	if err := loadJSON(src, promptValidator, &in); err != nil {
		return "", err
	}
	if err := ValidatePrompt(in.Prompt); err != nil {
		return "", err
	}
	return in.Prompt, nil
}
