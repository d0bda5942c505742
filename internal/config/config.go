// Package config loads runtime settings from defaults, an optional YAML file,
// and environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "tally.yaml"

// Config holds every runtime setting.
type Config struct {
	// DBPath is the SQLite file, relative to the working directory.
	DBPath string `yaml:"db_path"`

	// StrictDelete reports deletes of missing rows as errors.
	StrictDelete bool `yaml:"strict_delete"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:   "my_database.db",
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path, and env.
// An empty path means DefaultFile, which may be absent. An explicit path
// must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("STRICT_DELETE"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STRICT_DELETE %q: %w", v, err)
		}
		cfg.StrictDelete = strict
	}

	if cfg.DBPath == "" {
		return Config{}, errors.New("db_path must not be empty")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
