// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-optimizer/internal/committee"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/pipeline"
	"github.com/jonathan/resume-optimizer/internal/selection"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// Missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs and outputs
	Job         string `json:"job,omitempty"`          // Path to job posting JSON or text file
	Vault       string `json:"vault,omitempty"`        // Path to content vault JSON
	UserID      string `json:"user_id,omitempty"`      // User UUID (required for database vaults)
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Output      string `json:"output,omitempty"`       // Path for the JSON result
	ResumeOut   string `json:"resume_out,omitempty"`   // Path for the final markdown resume
	MetricsFile string `json:"metrics_file,omitempty"` // Prometheus textfile written after the run

	// LLM
	Provider       string            `json:"provider,omitempty" validate:"omitempty,oneof=gemini openai anthropic"`
	Models         map[string]string `json:"models,omitempty" validate:"dive,keys,oneof=lite standard advanced,endkeys,required"`
	APIKey         string            `json:"api_key,omitempty"`
	Temperature    float64           `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	MaxTokens      int               `json:"max_tokens,omitempty" validate:"gte=0"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty" validate:"gte=0"`
	RateLimit      float64           `json:"rate_limit,omitempty" validate:"gte=0"` // Requests per second, 0 disables
	Scorer         string            `json:"scorer,omitempty" validate:"omitempty,oneof=lexical llm"`

	Cache     llm.CacheConfig  `json:"cache"`
	Retry     llm.RetryConfig  `json:"retry"`
	Selector  selection.Config `json:"selector"`
	Committee committee.Config `json:"committee"`

	// Behavior
	SkipCommittee        bool   `json:"skip_committee,omitempty"`
	FailOnCommitteeError bool   `json:"fail_on_committee_error,omitempty"`
	Verbose              bool   `json:"verbose,omitempty"`
	LogLevel             string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat            string `json:"log_format,omitempty" validate:"omitempty,oneof=console json"`
}

// Scorer names
const (
	ScorerLexical = "lexical"
	ScorerLLM     = "llm"
)

// Defaults returns a Config with every section populated
func Defaults() Config {
	return Config{
		Provider:  string(llm.ProviderGemini),
		Scorer:    ScorerLexical,
		Cache:     llm.DefaultCacheConfig(),
		Retry:     llm.DefaultRetryConfig(),
		Selector:  selection.DefaultConfig(),
		Committee: committee.DefaultConfig(),
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// LoadConfig loads configuration from a JSON file on top of Defaults, so
// sections that are only partially specified keep their default values.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Vault != "" && c.DatabaseURL != "" {
		return fmt.Errorf("config error: 'vault' and 'database_url' are mutually exclusive")
	}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}
	if c.Vault != "" {
		if _, err := os.Stat(c.Vault); os.IsNotExist(err) {
			return fmt.Errorf("config error: vault file not found: %s", c.Vault)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string and zero numeric
// fields filled from defaults. Sections are taken as a whole.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.Job, defaults.Job)
	mergeString(&result.Vault, defaults.Vault)
	mergeString(&result.UserID, defaults.UserID)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.Output, defaults.Output)
	mergeString(&result.ResumeOut, defaults.ResumeOut)
	mergeString(&result.MetricsFile, defaults.MetricsFile)
	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.Scorer, defaults.Scorer)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.LogFormat, defaults.LogFormat)

	// Numeric fields: use default if zero
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.MaxTokens == 0 {
		result.MaxTokens = defaults.MaxTokens
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}

	if len(result.Models) == 0 && len(defaults.Models) > 0 {
		result.Models = make(map[string]string, len(defaults.Models))
		for tier, model := range defaults.Models {
			result.Models[tier] = model
		}
	}

	// Sections: an all-zero section was never configured
	if result.Retry.MaxAttempts == 0 {
		result.Retry = defaults.Retry
	}
	if result.Selector == (selection.Config{}) {
		result.Selector = defaults.Selector
	}
	if result.Committee == (committee.Config{}) {
		result.Committee = defaults.Committee
	}
	if result.Cache == (llm.CacheConfig{}) {
		result.Cache = defaults.Cache
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}

// LLMConfig builds the gateway configuration: provider defaults overridden
// by any configured models and sampling settings
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigForProvider(llm.Provider(c.Provider))
	for tier, model := range c.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	if c.Temperature > 0 {
		cfg.Temperature = c.Temperature
	}
	if c.MaxTokens > 0 {
		cfg.MaxTokens = c.MaxTokens
	}
	if c.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	return cfg
}

// APIKeyEnv names the environment variable holding a provider's API key
func APIKeyEnv(provider string) string {
	switch llm.Provider(provider) {
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// ResolveAPIKey returns the configured API key, falling back to the
// provider's environment variable
func (c *Config) ResolveAPIKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	env := APIKeyEnv(c.Provider)
	if key := os.Getenv(env); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s environment variable or --api-key flag is required for provider %s", env, c.Provider)
}

// Pipeline returns the per-run settings for the orchestrator
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		Selector:             c.Selector,
		Committee:            c.Committee,
		SkipCommittee:        c.SkipCommittee,
		FailOnCommitteeError: c.FailOnCommitteeError,
	}
}
