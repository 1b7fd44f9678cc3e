package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const EnvPrefix = "POSTCRAFT"

type Config struct {
	Mode Mode

	Port     string
	LogLevel string

	// LLM
	Provider       string // "openai", "gemini", "vertex" or "mock"
	ModelName      string
	Temperature    float64
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	GeminiAPIKey   string
	RequestTimeout time.Duration

	GCPProjectID string
	GCPLocation  string

	StorageBackend string // "memory", "sqlite" o "firestore"
	SQLitePath     string
	UseMockLLM     bool // true = use mock whatever the provider says

	// Presentation
	Layout      string // "desktop" or "mobile"
	PresetsFile string
}

// SetDefaults registers every key with its default so env vars are picked up by AutomaticEnv.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeLocal))
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("provider", "openai")
	v.SetDefault("model_name", "")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("openai_base_url", "")
	v.SetDefault("request_timeout", "60s")

	v.SetDefault("gcp_location", "us-central1")

	v.SetDefault("storage_backend", "memory")
	v.SetDefault("sqlite_path", "postcraft.db")
	v.SetDefault("use_mock_llm", false)

	v.SetDefault("layout", "desktop")
	v.SetDefault("presets_file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Provider keys are also read from their conventional names.
	_ = v.BindEnv("openai_api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini_api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("gcp_project", EnvPrefix+"_GCP_PROJECT", "GOOGLE_CLOUD_PROJECT")
}

// Load builds the config from v, which must have gone through SetDefaults.
func Load(v *viper.Viper) (*Config, error) {
	var mode Mode
	switch strings.ToLower(v.GetString("mode")) {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port:     v.GetString("port"),
		LogLevel: v.GetString("log_level"),

		Provider:       strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		ModelName:      v.GetString("model_name"),
		Temperature:    v.GetFloat64("temperature"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		OpenAIBaseURL:  v.GetString("openai_base_url"),
		GeminiAPIKey:   v.GetString("gemini_api_key"),
		RequestTimeout: v.GetDuration("request_timeout"),

		GCPProjectID: v.GetString("gcp_project"),
		GCPLocation:  v.GetString("gcp_location"),

		StorageBackend: strings.ToLower(v.GetString("storage_backend")),
		SQLitePath:     v.GetString("sqlite_path"),
		UseMockLLM:     v.GetBool("use_mock_llm"),

		Layout:      strings.ToLower(v.GetString("layout")),
		PresetsFile: v.GetString("presets_file"),
	}

	if cfg.UseMockLLM {
		cfg.Provider = "mock"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that would only fail later at first use.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "gemini", "vertex", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	switch c.StorageBackend {
	case "memory", "sqlite", "firestore":
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.Layout != "desktop" && c.Layout != "mobile" {
		return fmt.Errorf("unknown layout %q", c.Layout)
	}

	needsProject := c.Mode == ModeGCP || c.Provider == "vertex" || c.StorageBackend == "firestore"
	if needsProject && c.GCPProjectID == "" {
		return fmt.Errorf("%s_GCP_PROJECT must be set for mode=%s provider=%s storage=%s",
			EnvPrefix, c.Mode, c.Provider, c.StorageBackend)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
