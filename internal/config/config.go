// Package config loads and merges tabd's engine configuration: storage
// layout choice, ignore patterns, and vcs-notes push/fetch policy. Global
// and project files layer the same way, with project taking precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StorageLayout selects where persisted provenance logs live.
type StorageLayout string

const (
	LayoutRepository    StorageLayout = "repository"
	LayoutHomeDirectory StorageLayout = "homeDirectory"
	LayoutVCSNotes      StorageLayout = "vcs-notes"
)

// Config holds all configurable engine settings.
type Config struct {
	Layout            StorageLayout `yaml:"layout"`
	IgnorePatterns    []string      `yaml:"ignore_patterns"`
	VCSNotesAutoPush  bool          `yaml:"vcs_notes_auto_push"`
	VCSNotesAutoFetch bool          `yaml:"vcs_notes_auto_fetch"`
	ClipboardPollMS   int           `yaml:"clipboard_poll_ms"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		Layout:          LayoutRepository,
		IgnorePatterns:  []string{},
		ClipboardPollMS: 500,
	}
}

// LoadGlobal reads ~/.config/tabd/config.yaml. Returns defaults if the file
// is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "tabd", "config.yaml")
	return loadFile(path, true)
}

// LoadProject reads .tabd.yaml in the current working directory. Returns
// nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".tabd.yaml", false)
}

// loadFile reads and parses a YAML config file at path. If returnDefaults is
// true, returns defaults when the file is absent; otherwise returns nil.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking
// precedence. Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	if global != nil {
		applyNonZero(&result, global)
	}
	if project != nil {
		applyNonZero(&result, project)
	}

	return result
}

func applyNonZero(result *Config, override *Config) {
	if override.Layout != "" {
		result.Layout = override.Layout
	}
	if len(override.IgnorePatterns) > 0 {
		result.IgnorePatterns = override.IgnorePatterns
	}
	if override.ClipboardPollMS > 0 {
		result.ClipboardPollMS = override.ClipboardPollMS
	}
	if override.VCSNotesAutoPush {
		result.VCSNotesAutoPush = true
	}
	if override.VCSNotesAutoFetch {
		result.VCSNotesAutoFetch = true
	}
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
