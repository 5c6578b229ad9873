package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile reads an engine settings file. The format follows the extension:
// .yaml and .yml are YAML, .json is JSON. An empty file yields an empty
// Config, which resolves to DefaultSettings.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %q", ext)
	}
}

// FromYAML parses a YAML settings document. The document must be a mapping.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse settings yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON parses a JSON settings object.
func FromJSON(data []byte) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(nil), nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse settings json: %w", err)
	}
	return New(m), nil
}

// LoadSettings reads path, rejects keys that are not engine settings, and
// returns validated Settings.
func LoadSettings(path string) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	if unknown := cfg.UnknownKeys(); len(unknown) > 0 {
		return Settings{}, fmt.Errorf("%w: %s: unknown keys %s",
			ErrInvalidSetting, path, strings.Join(unknown, ", "))
	}
	s := cfg.Settings()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// UnknownKeys returns the top-level keys that no setting reads, sorted.
// Misspelled settings would otherwise fall back to their defaults silently.
func (c Config) UnknownKeys() []string {
	var unknown []string
	for k := range c.data {
		if !slices.Contains(settingKeys, k) {
			unknown = append(unknown, k)
		}
	}
	slices.Sort(unknown)
	return unknown
}

var settingKeys = []string{
	KeyMaxDepth, KeyMaxSteps, KeyTimeout, KeyAllowAttributes,
	KeyCacheSize, KeyMetrics, KeyTracing, KeyConstants,
}
