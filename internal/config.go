// Package internal provides application configuration and assembly.
package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Archive ArchiveConfig     `yaml:"archive"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Archive.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return nil
}

// ArchiveConfig holds the decision archive location and creation defaults.
type ArchiveConfig struct {
	Path      string   `yaml:"path"`
	IndexFile string   `yaml:"index_file"`
	Deciders  []string `yaml:"deciders"`
	Tags      []string `yaml:"tags"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.IndexFile, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Archive: ArchiveConfig{
			Path:      "./decisions",
			IndexFile: "INDEX.md",
		},
	}
}
