// Package config loads the YAML configuration of the route report.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SourceConfig is one depot planning export
type SourceConfig struct {
	Name   string `yaml:"name" validate:"required"`
	Path   string `yaml:"path" validate:"required"`
	Format string `yaml:"format" validate:"omitempty,oneof=csv xlsx json auto"`
}

// OutputConfig configures the delimited text sink
type OutputConfig struct {
	Path   string `yaml:"path"`
	Append bool   `yaml:"append"`
}

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

// Config is the root configuration structure
type Config struct {
	DepotMarker string         `yaml:"depot_marker"`
	Language    string         `yaml:"language" validate:"omitempty,oneof=nl en"`
	Database    string         `yaml:"database"`
	Output      OutputConfig   `yaml:"output"`
	Server      ServerConfig   `yaml:"server"`
	Sources     []SourceConfig `yaml:"sources" validate:"dive"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		DepotMarker: "DEPOT",
		Language:    "nl",
		Database:    "route_report.db",
		Output:      OutputConfig{Path: "data/Planning.csv"},
		Server:      ServerConfig{Port: 8080},
	}
}

// Load reads and validates a YAML configuration file. Unset fields keep
// their defaults and relative source paths resolve against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Sources {
		if !filepath.IsAbs(cfg.Sources[i].Path) {
			cfg.Sources[i].Path = filepath.Join(dir, cfg.Sources[i].Path)
		}
	}
	return cfg, nil
}

// Validate checks field constraints and that source names are unique
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		name := strings.TrimSpace(s.Name)
		if seen[name] {
			return fmt.Errorf("duplicate source name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// ParseSourceFlag reads a "name=path" command line source
func ParseSourceFlag(v string) (SourceConfig, error) {
	name, path, ok := strings.Cut(v, "=")
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if !ok || name == "" || path == "" {
		return SourceConfig{}, fmt.Errorf("invalid source %q, want name=path", v)
	}
	return SourceConfig{Name: name, Path: path}, nil
}
