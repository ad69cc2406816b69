package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Guard struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"guard"`
	Editor struct {
		// LegacyBlindIndexing re-enables the deprecated whole-file index
		// decrement. Off by default; the targeted form is the only
		// supported semantics.
		LegacyBlindIndexing bool `yaml:"legacy_blind_indexing"`
		IncludeStrings      bool `yaml:"include_strings"`
	} `yaml:"editor"`
	Session struct {
		Store  string `yaml:"store"` // "memory" or "sqlite"
		DBPath string `yaml:"db_path"`
	} `yaml:"session"`
	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Guard.Enabled = true
	cfg.Session.Store = "memory"
	cfg.Session.DBPath = "codemend.db"
	cfg.Logging.Level = "info"
	cfg.Logging.JSON = true
	return cfg
}

// LoadConfig reads configuration from path. A missing file yields defaults;
// a present but malformed file is an error. Environment variables override
// file values.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if store := os.Getenv("CODEMEND_SESSION_STORE"); store != "" {
		cfg.Session.Store = store
	}
	if dbPath := os.Getenv("CODEMEND_DB_PATH"); dbPath != "" {
		cfg.Session.DBPath = dbPath
	}
	if level := os.Getenv("CODEMEND_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}
