// Package config provides configuration loading for owltouml.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reycs/OwlToUml/ontology"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the complete owltouml configuration
type Config struct {
	Ontology OntologyConfig `yaml:"ontology"`
	Export   ExportConfig   `yaml:"export"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// OntologyConfig configures where and how the ontology is read
type OntologyConfig struct {
	// Locator is a file path or http(s) URL
	Locator string `yaml:"locator"`
	// Format is auto, jsonld, nquads, turtle or rdfxml
	Format string `yaml:"format"`
	// Namespaces override or add prefix declarations of the document
	Namespaces map[string]string `yaml:"namespaces"`
	// FollowImports loads owl:imports targets as well
	FollowImports bool `yaml:"follow_imports"`
	// Timeout bounds fetching remote documents
	Timeout time.Duration `yaml:"timeout"`
}

// ExportConfig configures the interchange file
type ExportConfig struct {
	// ShortName names the default namespace's package and the output file
	ShortName string `yaml:"short_name"`
	// OutputDir is the directory the file is written to
	OutputDir string `yaml:"output_dir"`
	// Diagrams adds one logical diagram per package
	Diagrams bool `yaml:"diagrams"`
}

// StoreConfig configures the fact store holding the ontology's triples
type StoreConfig struct {
	// Backend is memory, sqlite or postgres
	Backend string `yaml:"backend"`
	// DSN is the SQLite path or PostgreSQL connection string
	DSN string `yaml:"dsn"`
	// Pragmas are extra SQLite pragmas
	Pragmas map[string]string `yaml:"pragmas"`
	// DumpPath, when set, receives the stored facts: N-Quads for a .nq or .nt
	// file, JSON lines otherwise.
	DumpPath string `yaml:"dump_path"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is a zerolog level name
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			Format:  "auto",
			Timeout: time.Minute,
		},
		Export: ExportConfig{
			OutputDir: ".",
		},
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Ontology.Locator == "" {
		return fmt.Errorf("ontology.locator is required")
	}
	if _, err := ontology.ParseFormat(c.Ontology.Format); err != nil {
		return fmt.Errorf("ontology.format: %w", err)
	}
	if c.Ontology.Timeout < 0 {
		return fmt.Errorf("ontology.timeout must not be negative")
	}
	if c.Export.ShortName == "" {
		return fmt.Errorf("export.short_name is required")
	}
	if strings.ContainsAny(c.Export.ShortName, `/\:`) {
		return fmt.Errorf("export.short_name %q must not contain path separators or colons", c.Export.ShortName)
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite, BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("store.backend must be one of %s, %s, %s; got %q",
			BackendMemory, BackendSQLite, BackendPostgres, c.Store.Backend)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// OutputPath returns the path of the interchange file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Export.OutputDir, c.Export.ShortName+".xml")
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Ontology
	if other.Ontology.Locator != "" {
		c.Ontology.Locator = other.Ontology.Locator
	}
	if other.Ontology.Format != "" {
		c.Ontology.Format = other.Ontology.Format
	}
	if len(other.Ontology.Namespaces) > 0 {
		if c.Ontology.Namespaces == nil {
			c.Ontology.Namespaces = map[string]string{}
		}
		maps.Copy(c.Ontology.Namespaces, other.Ontology.Namespaces)
	}
	if other.Ontology.FollowImports {
		c.Ontology.FollowImports = true
	}
	if other.Ontology.Timeout != 0 {
		c.Ontology.Timeout = other.Ontology.Timeout
	}

	// Export
	if other.Export.ShortName != "" {
		c.Export.ShortName = other.Export.ShortName
	}
	if other.Export.OutputDir != "" {
		c.Export.OutputDir = other.Export.OutputDir
	}
	if other.Export.Diagrams {
		c.Export.Diagrams = true
	}

	// Store
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.DSN != "" {
		c.Store.DSN = other.Store.DSN
	}
	if len(other.Store.Pragmas) > 0 {
		if c.Store.Pragmas == nil {
			c.Store.Pragmas = map[string]string{}
		}
		maps.Copy(c.Store.Pragmas, other.Store.Pragmas)
	}
	if other.Store.DumpPath != "" {
		c.Store.DumpPath = other.Store.DumpPath
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
