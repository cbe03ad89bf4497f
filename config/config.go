// Package config loads the pipeline configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aua-planner/planner/scrape/catalog"
	"github.com/aua-planner/planner/scrape/gened"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Input is the scraped courses JSON.
	Input string `yaml:"input"`
	// Output is the enriched CSV.
	Output string `yaml:"output"`
	// Report is the missing-value CSV; empty skips it.
	Report string `yaml:"report"`

	Database DatabaseConfig `yaml:"database"`

	Rules catalog.Overrides `yaml:"rules"`

	Clusters ClustersConfig `yaml:"clusters"`

	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig selects where runs are persisted. An empty DSN disables
// persistence.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres, sqlite
	DSN    string `yaml:"dsn"`
}

type ClustersConfig struct {
	URL     string `yaml:"url"`
	Output  string `yaml:"output"`
	Timeout string `yaml:"timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Input:  "data/courses.json",
		Output: "data/courses.csv",
		Database: DatabaseConfig{
			Driver: DriverPostgres,
		},
		Clusters: ClustersConfig{
			URL:     gened.DefaultURL,
			Output:  "aua_cluster_scraped.csv",
			Timeout: "30s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if dsn := os.Getenv("DATABASE_CONNECTION_STRING"); dsn != "" {
		c.Database.DSN = dsn
	}
	if driver := os.Getenv("COURSES_DATABASE_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if _, err := c.RulesSet(); err != nil {
		return err
	}
	return nil
}

// RulesSet returns the default rules extended by the configured overrides.
func (c *Config) RulesSet() (*catalog.Rules, error) {
	rules, err := catalog.DefaultRules().Apply(c.Rules)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return rules, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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
