package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		Path string `yaml:"path"` // graph database file
	} `yaml:"storage"`
	AI struct {
		Provider       string `yaml:"provider"` // "openai", "gemini" or "none"
		Model          string `yaml:"model"`
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxFileBytes   int64  `yaml:"max_file_bytes"` // larger files skip inference
	} `yaml:"ai"`
	Pipeline struct {
		Workers      int `yaml:"workers"`       // per-file extraction concurrency
		ClosureDepth int `yaml:"closure_depth"` // bounded closure for reporting
		MaxRetries   int `yaml:"max_retries"`
	} `yaml:"pipeline"`
}

func defaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "codeport.db"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "none"
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.AI.MaxFileBytes == 0 {
		cfg.AI.MaxFileBytes = 100 * 1024
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 4
	}
	if cfg.Pipeline.ClosureDepth == 0 {
		cfg.Pipeline.ClosureDepth = 3
	}
	if cfg.Pipeline.MaxRetries == 0 {
		cfg.Pipeline.MaxRetries = 3
	}
}

// LoadConfig reads the YAML config at path, then applies .env and
// environment overrides. A missing config file yields pure defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if file, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if apiKey := os.Getenv("CODEPORT_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("CODEPORT_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if modelName := os.Getenv("CODEPORT_AI_MODEL"); modelName != "" {
		cfg.AI.Model = modelName
	}
	if dbPath := os.Getenv("CODEPORT_DB"); dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if workers := os.Getenv("CODEPORT_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.Pipeline.Workers = n
		}
	}

	defaults(&cfg)
	return &cfg, nil
}
