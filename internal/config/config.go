// Package config loads genkit.yaml with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GENKIT_SOURCE_URL.
const EnvPrefix = "GENKIT_"

// EnvConfigPath names an explicit config file.
const EnvConfigPath = "GENKIT_CONFIG"

// DefaultPath is where init writes a new config.
const DefaultPath = "genkit.yaml"

var searchPaths = []string{"genkit.yaml", "genkit.yml", ".genkit.yaml", ".genkit.yml"}

// Config represents the genkit.yaml configuration structure
type Config struct {
	Version string `yaml:"version" env:"VERSION"`

	Source    SourceConfig    `yaml:"source" envPrefix:"SOURCE_"`
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Generator GeneratorConfig `yaml:"generator" envPrefix:"GENERATOR_"`
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`

	// Operator is recorded as create_by/update_by for CLI writes.
	Operator string `yaml:"operator" env:"OPERATOR"`
}

// SourceConfig is the live database whose tables are imported.
type SourceConfig struct {
	Driver string `yaml:"driver" env:"DRIVER" validate:"oneof=mysql postgres"`
	URL    string `yaml:"url" env:"URL"`
	Schema string `yaml:"schema,omitempty" env:"SCHEMA"`
}

// StoreConfig is the database holding generation metadata.
type StoreConfig struct {
	Driver         string `yaml:"driver" env:"DRIVER" validate:"oneof=sqlite postgres mysql"`
	URL            string `yaml:"url" env:"URL" validate:"required"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS" validate:"gte=0"`
}

type GeneratorConfig struct {
	ModuleName      string   `yaml:"module_name" env:"MODULE_NAME"`
	Author          string   `yaml:"author" env:"AUTHOR"`
	TemplateDir     string   `yaml:"template_dir,omitempty" env:"TEMPLATE_DIR"`
	DefaultCategory string   `yaml:"default_category" env:"DEFAULT_CATEGORY"`
	ExcludePrefixes []string `yaml:"exclude_prefixes" env:"EXCLUDE_PREFIXES" envSeparator:","`
	Workers         int      `yaml:"workers" env:"WORKERS" validate:"gte=1,lte=64"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT" validate:"oneof=text json"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Source.Driver == "" {
		c.Source.Driver = "mysql"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.URL == "" && c.Store.Driver == "sqlite" {
		c.Store.URL = "genkit.db"
	}
	if c.Store.MaxConnections == 0 {
		c.Store.MaxConnections = 10
	}
	if c.Generator.ModuleName == "" {
		c.Generator.ModuleName = "system"
	}
	if c.Generator.Author == "" {
		c.Generator.Author = "genkit"
	}
	if c.Generator.DefaultCategory == "" {
		c.Generator.DefaultCategory = "crud"
	}
	if c.Generator.ExcludePrefixes == nil {
		c.Generator.ExcludePrefixes = []string{"gen_", "qrtz_"}
	}
	if c.Generator.Workers == 0 {
		c.Generator.Workers = 4
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Operator == "" {
		c.Operator = "admin"
	}
}

// Path returns $GENKIT_CONFIG or the first config file found in the working directory.
func Path() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	for _, loc := range searchPaths {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Load reads the config at path, or the one found by Path when path is empty. A missing
// file is not an error when no path was requested. Environment variables override the
// file and defaults fill whatever is left.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks enumerated and required settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config: %s must satisfy %s (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg as YAML.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
