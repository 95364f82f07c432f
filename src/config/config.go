// Package config resolves runtime configuration for the CLI.
// Precedence: CLI flags > YAML config file > environment > defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/darcyabjones/acc-to-tax/src/dbtarget"
)

// Config aggregates the settings shared by every subcommand.
type Config struct {
	// DB is the database target URI (e.g. sqlite:/data/db.sqlite).
	DB string `yaml:"db"`
	// LogLevel is the zerolog level name.
	LogLevel string `yaml:"log_level"`
	// NameClass is the name class used when a single name per taxid is
	// wanted (lineage, lookup).
	NameClass string `yaml:"name_class"`
	// BatchSize is the number of rows per multi-row INSERT during build.
	BatchSize int `yaml:"batch_size"`
}

func defaults() Config {
	return Config{
		DB:        dbtarget.Default,
		LogLevel:  "info",
		NameClass: "scientific name",
		BatchSize: 500,
	}
}

// Load builds the configuration from defaults, environment, and the optional
// YAML file at path (empty path skips the file; a missing explicit file is
// an error). Flag overrides are the caller's job since only it knows which
// flags were actually set.
func Load(path string) (Config, error) {
	cfg := defaults()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var file Config
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		applyFile(&cfg, file)
	}

	if _, err := dbtarget.Parse(cfg.DB); err != nil {
		return Config{}, err
	}
	if cfg.BatchSize < 1 {
		return Config{}, fmt.Errorf("batch_size must be at least 1, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("ACC2TAX_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("ACC2TAX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ACC2TAX_NAME_CLASS"); v != "" {
		cfg.NameClass = v
	}
	if v := os.Getenv("ACC2TAX_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACC2TAX_BATCH_SIZE: %w", err)
		}
		cfg.BatchSize = n
	}
	return nil
}

func applyFile(cfg *Config, file Config) {
	if file.DB != "" {
		cfg.DB = file.DB
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.NameClass != "" {
		cfg.NameClass = file.NameClass
	}
	if file.BatchSize != 0 {
		cfg.BatchSize = file.BatchSize
	}
}
