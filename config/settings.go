// Package config provides application settings.
//
// Settings are created via Load() which handles:
// - Environment variable parsing (TINYTALES_ prefix) with defaults
// - An optional TOML file whose present keys override the environment
// - Validation of ranges and enumerations
// - Provider-specific key and model lookup

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every settings environment variable.
const EnvPrefix = "TINYTALES"

// Settings holds all application configuration.
type Settings struct {
	LLM        LLMConfig        `envconfig:"LLM" toml:"llm"`
	Sampling   SamplingConfig   `envconfig:"SAMPLING" toml:"sampling"`
	Generation GenerationConfig `envconfig:"GENERATION" toml:"generation"`
	Storage    Storage          `envconfig:"STORAGE" toml:"storage"`
	Log        LogConfig        `envconfig:"LOG" toml:"log"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider string `envconfig:"PROVIDER" default:"gemini" toml:"provider"`
	// Model overrides the provider's default model when set.
	Model   string   `envconfig:"MODEL" toml:"model"`
	BaseURL string   `envconfig:"BASE_URL" toml:"base_url" validate:"omitempty,url"`
	Timeout Duration `envconfig:"TIMEOUT" default:"60s" toml:"timeout"`
}

// SamplingConfig holds the generation parameters sent with every request.
type SamplingConfig struct {
	Temperature     float32 `envconfig:"TEMPERATURE" default:"0.8" toml:"temperature" validate:"gte=0,lte=2"`
	TopP            float32 `envconfig:"TOP_P" default:"0.9" toml:"top_p" validate:"gt=0,lte=1"`
	TopK            int32   `envconfig:"TOP_K" default:"32" toml:"top_k" validate:"gte=1"`
	MaxOutputTokens int32   `envconfig:"MAX_OUTPUT_TOKENS" default:"2000" toml:"max_output_tokens" validate:"gte=1"`
	CandidateCount  int32   `envconfig:"CANDIDATE_COUNT" default:"1" toml:"candidate_count" validate:"eq=1"`
}

// GenerationConfig holds orchestrator settings.
type GenerationConfig struct {
	DuplicateThreshold float64 `envconfig:"DUPLICATE_THRESHOLD" default:"0.75" toml:"duplicate_threshold" validate:"gt=0,lte=1"`
	// Seed appends a per-request seed line to the prompt.
	Seed bool `envconfig:"SEED" default:"true" toml:"seed"`
	// HistoryLimit caps the duplicate history. Zero keeps everything.
	HistoryLimit int `envconfig:"HISTORY_LIMIT" default:"0" toml:"history_limit" validate:"gte=0"`
}

// Storage holds persistence settings.
type Storage struct {
	Backend      string `envconfig:"BACKEND" default:"json" toml:"backend" validate:"oneof=json sqlite"`
	DataDir      string `envconfig:"DATA_DIR" default:"data" toml:"data_dir" validate:"required"`
	StoriesFile  string `envconfig:"STORIES_FILE" default:"stories.json" toml:"stories_file" validate:"required"`
	CounterFile  string `envconfig:"COUNTER_FILE" default:"story_count.json" toml:"counter_file" validate:"required"`
	SQLitePath   string `envconfig:"SQLITE_PATH" default:"tinytales.db" toml:"sqlite_path" validate:"required"`
	AtomicWrites bool   `envconfig:"ATOMIC_WRITES" default:"true" toml:"atomic_writes"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info" toml:"level" validate:"oneof=debug info warn error"`
	Encoding   string `envconfig:"ENCODING" default:"console" toml:"encoding" validate:"oneof=console json"`
	OutputPath string `envconfig:"OUTPUT_PATH" default:"stderr" toml:"output_path" validate:"required"`
}

// Duration is a time.Duration that reads from strings like "90s" in both
// the environment and TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads settings from the environment, then overlays the TOML file at
// path when path is non-empty. Keys present in the file win over the
// environment.
func Load(path string) (Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("load environment: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	s.LLM.Provider = normalizeProvider(s.LLM.Provider)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the provider name and every range and enumeration.
func (s Settings) Validate() error {
	if _, err := getProviderInfo(normalizeProvider(s.LLM.Provider)); err != nil {
		return err
	}
	if s.LLM.Timeout.Std() <= 0 {
		return errors.New("invalid settings: llm.timeout must be positive")
	}

	err := validator.New().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate settings: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.ActualTag()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, ", "))
}

// Model returns the configured model, falling back to ModelFor.
func (s Settings) Model() string {
	if s.LLM.Model != "" {
		return s.LLM.Model
	}
	model, err := ModelFor(s.LLM.Provider)
	if err != nil {
		return ""
	}
	return model
}

// StoriesPath returns the story file location.
func (s Storage) StoriesPath() string {
	return s.resolve(s.StoriesFile)
}

// CounterPath returns the counter file location.
func (s Storage) CounterPath() string {
	return s.resolve(s.CounterFile)
}

// DatabasePath returns the SQLite database location.
func (s Storage) DatabasePath() string {
	return s.resolve(s.SQLitePath)
}

func (s Storage) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnvs   []string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"gemini":    {"GEMINI_MODEL", "gemini-2.0-flash", []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}},
	"groq":      {"GROQ_MODEL", "llama3-8b-8192", []string{"GROQ_API_KEY"}},
	"openai":    {"OPENAI_MODEL", "gpt-4o-mini", []string{"OPENAI_API_KEY"}},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", []string{"ANTHROPIC_API_KEY"}},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
	"llama":  "groq",
}

// NormalizeProvider converts provider aliases to canonical names.
func NormalizeProvider(provider string) string {
	return normalizeProvider(provider)
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
// Gemini accepts GOOGLE_API_KEY when GEMINI_API_KEY is unset.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	for _, env := range info.apiKeyEnvs {
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnvs[0])
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedProviders returns the supported provider names, sorted.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
