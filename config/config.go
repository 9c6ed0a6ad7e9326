// Package config loads pdfindex settings from defaults, an optional YAML
// file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderSimple = "simple"

	DefaultPDFDir     = "./clinical_pdfs"
	DefaultStoreDir   = "./chroma_db"
	DefaultCollection = "clinical_manuals"
	DefaultPattern    = "*.pdf"
	DefaultMinLength  = 11
	DefaultBatchSize  = 90
	DefaultPauseMs    = 1000
)

// ErrMissingCredential is returned when the selected provider needs an API key
// and none was configured.
var ErrMissingCredential = errors.New("missing credential")

// Config defines indexing settings.
type Config struct {
	PDFDir     string `yaml:"pdfDir"`
	StoreDir   string `yaml:"storeDir"`
	Collection string `yaml:"collection"`
	Pattern    string `yaml:"pattern"`
	MinLength  int    `yaml:"minLength"`
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"baseURL"`
	BatchSize  int    `yaml:"batchSize"`
	PauseMs    int    `yaml:"pauseMs"`
	APIKey     string `yaml:"apiKey"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PDFDir:     DefaultPDFDir,
		StoreDir:   DefaultStoreDir,
		Collection: DefaultCollection,
		Pattern:    DefaultPattern,
		MinLength:  DefaultMinLength,
		Provider:   ProviderGemini,
		BatchSize:  DefaultBatchSize,
		PauseMs:    DefaultPauseMs,
	}
}

// Load builds a Config. Values are applied in order: defaults, the YAML file at
// path (skipped when path is empty), a .env file in the working directory, then
// environment variables. Variables already set in the environment take
// precedence over .env entries.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	path, err := expandUserPath(path)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PDF_DIR"); v != "" {
		c.PDFDir = v
	}
	if v := os.Getenv("STORE_DIR"); v != "" {
		c.StoreDir = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Model = v
	}
	if c.APIKey == "" {
		if name := c.KeyEnv(); name != "" {
			c.APIKey = os.Getenv(name)
		}
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.PDFDir, err = expandUserPath(c.PDFDir); err != nil {
		return err
	}
	if c.StoreDir, err = expandUserPath(c.StoreDir); err != nil {
		return err
	}
	return nil
}

// KeyEnv returns the environment variable holding the provider API key, or
// an empty string when the provider needs none.
func (c *Config) KeyEnv() string {
	switch c.provider() {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	}
	return ""
}

// Validate checks the configuration before any work starts.
func (c *Config) Validate() error {
	switch c.provider() {
	case ProviderGemini, ProviderOpenAI, ProviderOllama, ProviderSimple:
	default:
		return fmt.Errorf("config: unsupported provider: %s", c.Provider)
	}
	if name := c.KeyEnv(); name != "" && strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: %s not found", ErrMissingCredential, name)
	}
	if strings.TrimSpace(c.Collection) == "" {
		return fmt.Errorf("config: collection is required")
	}
	if _, err := filepath.Match(c.Pattern, ""); err != nil {
		return fmt.Errorf("config: pattern %q: %w", c.Pattern, err)
	}
	if c.MinLength < 0 {
		return fmt.Errorf("config: minLength must not be negative, got %d", c.MinLength)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batchSize must be positive, got %d", c.BatchSize)
	}
	if c.PauseMs < 0 {
		return fmt.Errorf("config: pauseMs must not be negative, got %d", c.PauseMs)
	}
	return nil
}

func (c *Config) provider() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		return ProviderGemini
	}
	return p
}

// ProviderName returns the normalized provider name.
func (c *Config) ProviderName() string { return c.provider() }
