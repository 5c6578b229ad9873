/*
Package config reads engine settings from YAML or JSON documents.

# Overview

Config wraps a decoded map[string]any and provides typed accessors that
return a default when a key is missing or holds the wrong type. Settings
turns a document into the parameters an engine is built from.

# Usage

	cfg, err := config.FromFile("safeexpr.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	settings := cfg.Settings()
	if err := settings.Validate(); err != nil {
	    log.Fatal(err)
	}

A settings file:

	max_depth: 100
	max_steps: 10000
	timeout: 50ms
	allow_attributes: true
	cache_size: 512
	metrics: true
	constants:
	  threshold: 10

LoadSettings does all three steps and also rejects keys that are not
settings, so a misspelled key fails instead of falling back to its default:

	settings, err := config.LoadSettings("safeexpr.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	engine := safeexpr.New(safeexpr.WithSettings(settings))

Nested documents can be narrowed with Section:

	engineSettings := cfg.Section("engine").Settings()

# Type Coercion

Duration accepts strings ("30s", "1h30m"), numbers of seconds and
time.Duration values. Int accepts float64 values without a fractional part,
which is how JSON decodes every number.

# Thread Safety

Config is safe for concurrent reads. The underlying map is never modified.
*/
package config
