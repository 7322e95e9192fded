package config

import (
	"log/slog"
	"strings"

	"github.com/jackzampolin/tagsheet/internal/tagsheet"
)

// Config holds tagsheet configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Project    ProjectCfg    `mapstructure:"project" yaml:"project" json:"project"`
	Author     string        `mapstructure:"author" yaml:"author" json:"author"`
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction" json:"extraction"`
	Batch      BatchCfg      `mapstructure:"batch" yaml:"batch" json:"batch"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server" json:"server"`
	History    HistoryCfg    `mapstructure:"history" yaml:"history" json:"history"`
	Output     OutputCfg     `mapstructure:"output" yaml:"output" json:"output"`
	LogLevel   string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
}

// ProjectCfg holds the project defaults stamped on generated sheets.
type ProjectCfg struct {
	Name       string `mapstructure:"name" yaml:"name" json:"name"`
	ClientName string `mapstructure:"client_name" yaml:"client_name" json:"client_name"`
	Site       string `mapstructure:"site" yaml:"site" json:"site"`                // Default site code
	UnitCode   string `mapstructure:"unit_code" yaml:"unit_code" json:"unit_code"` // Default unit code
}

// ExtractionCfg tunes the tag extractor.
type ExtractionCfg struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"` // Concurrent page scanners per document
}

// BatchCfg tunes multi-document runs.
type BatchCfg struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"` // Documents processed at once
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port string `mapstructure:"port" yaml:"port" json:"port"`
}

// HistoryCfg configures the run history database.
type HistoryCfg struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" json:"path"` // Empty means {home}/history.db
}

// OutputCfg configures where workbooks are written.
type OutputCfg struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"` // Empty means {home}/exports
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectCfg{
			Name: "Project",
		},
		Extraction: ExtractionCfg{Workers: 4},
		Batch:      BatchCfg{Workers: 2},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		History:  HistoryCfg{Enabled: true},
		LogLevel: "info",
	}
}

// ProjectInfo converts the project section for the sheet builder.
func (c *Config) ProjectInfo() tagsheet.Project {
	return tagsheet.Project{
		Name:            c.Project.Name,
		ClientName:      c.Project.ClientName,
		SiteDefault:     c.Project.Site,
		UnitCodeDefault: c.Project.UnitCode,
	}
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
