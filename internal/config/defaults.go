package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrInvalidKey is returned when a config key contains invalid characters.
var ErrInvalidKey = errors.New("invalid config key")

// ErrUnknownKey is returned for keys with no documented default.
var ErrUnknownKey = errors.New("unknown config key")

// Entry documents a single configuration key.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns every configuration key with its default.
// These are registered as viper defaults so env overrides reach nested keys.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		// ===================
		// Project
		// ===================
		{
			Key:         "project.name",
			Value:       d.Project.Name,
			Description: "Project name used in sheets and file names",
		},
		{
			Key:         "project.client_name",
			Value:       d.Project.ClientName,
			Description: "Client name shown on the Summary sheet",
		},
		{
			Key:         "project.site",
			Value:       d.Project.Site,
			Description: "Default site code when no process site is given",
		},
		{
			Key:         "project.unit_code",
			Value:       d.Project.UnitCode,
			Description: "Default unit code when no process unit is given",
		},
		{
			Key:         "author",
			Value:       d.Author,
			Description: "Name stamped in the Added By column",
		},

		// ===================
		// Processing
		// ===================
		{
			Key:         "extraction.workers",
			Value:       d.Extraction.Workers,
			Description: "Pages scanned concurrently within one document",
		},
		{
			Key:         "batch.workers",
			Value:       d.Batch.Workers,
			Description: "Documents processed concurrently in a batch",
		},

		// ===================
		// Server
		// ===================
		{
			Key:         "server.host",
			Value:       d.Server.Host,
			Description: "HTTP listen host",
		},
		{
			Key:         "server.port",
			Value:       d.Server.Port,
			Description: "HTTP listen port",
		},

		// ===================
		// Storage
		// ===================
		{
			Key:         "history.enabled",
			Value:       d.History.Enabled,
			Description: "Record a summary of every extraction run",
		},
		{
			Key:         "history.path",
			Value:       d.History.Path,
			Description: "History database path (default {home}/history.db)",
		},
		{
			Key:         "output.dir",
			Value:       d.Output.Dir,
			Description: "Directory for generated workbooks (default {home}/exports)",
		},
		{
			Key:         "log_level",
			Value:       d.LogLevel,
			Description: "Log level: debug, info, warn or error",
		},
	}
}

// ValidateKey checks if a config key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	// Don't allow keys starting or ending with dots
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}

// GetDefault returns the documented default for a key.
func GetDefault(key string) (*Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	for _, e := range DefaultEntries() {
		if e.Key == key {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// EntriesWithPrefix returns documented entries under prefix, sorted by key.
func EntriesWithPrefix(prefix string) []Entry {
	var out []Entry
	for _, e := range DefaultEntries() {
		if strings.HasPrefix(e.Key, prefix) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
