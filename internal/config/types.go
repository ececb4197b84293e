// Package config provides configuration types and loading for synthline.
// Configuration is resolved from defaults, synthline.yaml, SYNTHLINE_*
// environment variables, and CLI flags, in increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/synthline-labs/synthline/internal/sink"
)

// RowCounts holds base row counts for the seed tables. Dependent table
// sizes are derived from these during generation.
type RowCounts struct {
	Clients     int `koanf:"clients"`
	TeamMembers int `koanf:"team_members"`
	Projects    int `koanf:"projects"`
}

// SinkConfig holds destination database configuration for bundle loads.
type SinkConfig struct {
	Type string `koanf:"type"` // duckdb, postgres

	// File-based databases (DuckDB)
	Path string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// ToSinkConfig converts to the sink package's config type.
func (s *SinkConfig) ToSinkConfig() sink.Config {
	return sink.Config{
		Type:     s.Type,
		Path:     s.Path,
		Host:     s.Host,
		Port:     s.Port,
		Database: s.Database,
		Username: s.User,
		Password: s.Password,
		Options:  s.Options,
	}
}

// Validate checks if the sink configuration is valid.
// It uses the sink registry to determine which sink types are available.
func (s *SinkConfig) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("sink type is required")
	}
	if !sink.IsRegistered(strings.ToLower(s.Type)) {
		return &sink.UnknownSinkError{
			Type:      s.Type,
			Available: sink.List(),
		}
	}
	return nil
}

// Config is the full synthline configuration.
type Config struct {
	Rows       RowCounts   `koanf:"rows"`
	Multiplier int         `koanf:"multiplier"`
	Seed       int64       `koanf:"seed"`
	OutputDir  string      `koanf:"output_dir"`
	StatePath  string      `koanf:"state_path"`
	Verbose    bool        `koanf:"verbose"`
	Sink       *SinkConfig `koanf:"sink"`
}

// Validate checks the configuration for values generation cannot work with.
func (c *Config) Validate() error {
	if c.Rows.Clients <= 0 {
		return fmt.Errorf("rows.clients must be positive, got %d", c.Rows.Clients)
	}
	if c.Rows.TeamMembers <= 0 {
		return fmt.Errorf("rows.team_members must be positive, got %d", c.Rows.TeamMembers)
	}
	if c.Rows.Projects <= 0 {
		return fmt.Errorf("rows.projects must be positive, got %d", c.Rows.Projects)
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("multiplier must be at least 1, got %d", c.Multiplier)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}
