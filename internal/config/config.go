package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all chakancha configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configuration (intent analysis + response generation)
	LLM LLMConfig `yaml:"llm"`

	// Embedding engine configuration
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Knowledge base and conversation storage
	Store StoreConfig `yaml:"store"`

	// DHL shipment tracking
	Tracking TrackingConfig `yaml:"tracking"`

	// HTTP API server
	Server ServerConfig `yaml:"server"`

	// Deployment runner
	Deploy DeployConfig `yaml:"deploy"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the chat model.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // gemini
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	Timeout   string `yaml:"timeout"`
	MaxTokens int    `yaml:"max_tokens"`
}

// EmbeddingConfig configures the vector embedding engine.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // genai, ollama
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TaskType       string `yaml:"task_type"`
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
	BatchSize      int    `yaml:"batch_size"`
}

// StoreConfig configures the SQLite knowledge base.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
	FAQFile      string `yaml:"faq_file"`
	Namespace    string `yaml:"namespace"`
	WatchFAQFile bool   `yaml:"watch_faq_file"`
}

// TrackingConfig configures the DHL tracking client.
// With no API key the client serves deterministic mock data.
type TrackingConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	RatePerMinute   int    `yaml:"rate_per_minute"`
	HistoryWindow   int    `yaml:"history_window"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DeployConfig configures the deployment runner.
// RunMigrations defaults to false: the migrate step ships disabled and only
// PostgreSQL deployments turn it on.
type DeployConfig struct {
	ManifestPath  string `yaml:"manifest_path"`
	ManagePath    string `yaml:"manage_path"`
	Python        string `yaml:"python"`
	Pip           string `yaml:"pip"`
	WorkingDir    string `yaml:"working_dir"`
	StepTimeout   string `yaml:"step_timeout"`
	RunMigrations bool   `yaml:"run_migrations"`
}

// LoggingConfig configures debug file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "chakancha",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.5-flash",
			Timeout:   "120s",
			MaxTokens: 1024,
		},

		Embedding: EmbeddingConfig{
			Provider:       "genai",
			Model:          "gemini-embedding-001",
			TaskType:       "RETRIEVAL_DOCUMENT",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			BatchSize:      50,
		},

		Store: StoreConfig{
			DatabasePath: "data/chakancha.db",
			FAQFile:      "data/faq/faq_en.json",
			Namespace:    "default",
			WatchFAQFile: false,
		},

		Tracking: TrackingConfig{
			BaseURL: "https://api-eu.dhl.com/track/shipments",
			Timeout: "10s",
		},

		Server: ServerConfig{
			Addr:            ":8000",
			RatePerMinute:   60,
			HistoryWindow:   10,
			ShutdownTimeout: "15s",
		},

		Deploy: DeployConfig{
			ManifestPath:  "requirements.txt",
			ManagePath:    "manage.py",
			Python:        "python3",
			Pip:           "pip",
			WorkingDir:    ".",
			StepTimeout:   "10m",
			RunMigrations: false,
		},

		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.Embedding.APIKey == "" {
			c.Embedding.APIKey = key
		}
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedding.APIKey == "" {
			c.Embedding.APIKey = key
		}
	}
	if key := os.Getenv("DHL_API_KEY"); key != "" {
		c.Tracking.APIKey = key
	}
	if path := os.Getenv("CHAKANCHA_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if addr := os.Getenv("CHAKANCHA_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetTrackingTimeout returns the DHL API timeout as a duration.
func (c *Config) GetTrackingTimeout() time.Duration {
	d, err := time.ParseDuration(c.Tracking.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetStepTimeout returns the per-step deploy timeout as a duration.
func (c *Config) GetStepTimeout() time.Duration {
	d, err := time.ParseDuration(c.Deploy.StepTimeout)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// GetShutdownTimeout returns the server drain timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Store.DatabasePath == "" {
		return fmt.Errorf("store.database_path is required")
	}
	if c.Server.RatePerMinute <= 0 {
		return fmt.Errorf("server.rate_per_minute must be positive")
	}
	if c.Server.HistoryWindow <= 0 {
		return fmt.Errorf("server.history_window must be positive")
	}
	if c.Deploy.ManifestPath == "" {
		return fmt.Errorf("deploy.manifest_path is required")
	}
	switch c.Embedding.Provider {
	case "genai", "ollama", "":
	default:
		return fmt.Errorf("embedding.provider must be genai or ollama, got %q", c.Embedding.Provider)
	}
	return nil
}
