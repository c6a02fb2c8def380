package siteconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// FileName is the name of the optional site config file in the document root.
const FileName = "tmplexpress.json"

// Cache holds the "cache" option, which may be a boolean or a directory path.
// A non-empty path counts as enabled.
type Cache struct {
	Enabled bool
	Path    string
}

// UnmarshalJSON accepts either a JSON boolean or a JSON string.
func (c *Cache) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*c = Cache{Enabled: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected a boolean or a path, got %s", bytes.TrimSpace(data))
	}
	*c = Cache{Enabled: s != "", Path: s}
	return nil
}

// MarshalJSON writes the path if one was configured, the boolean otherwise.
func (c Cache) MarshalJSON() ([]byte, error) {
	if c.Path != "" {
		return json.Marshal(c.Path)
	}
	return json.Marshal(c.Enabled)
}

// Options are the engine options a site config may override.
type Options struct {
	// Debug enables the dump function and debug-level render logging.
	Debug bool `json:"debug"`

	// Cache keeps parsed templates between requests while no template file changes.
	Cache Cache `json:"cache"`

	// Autoescape selects html/template (true) or text/template (false).
	Autoescape bool `json:"autoescape"`

	// StrictVariables makes a missing map key a render error.
	StrictVariables bool `json:"strict_variables"`

	// Charset is appended to textual content types.
	Charset string `json:"charset"`
}

// Config is the merged site configuration.
type Config struct {
	Options Options
	// Globals are exposed by name to every rendered template.
	Globals map[string]any
	// File is the config file that was read, empty when defaults were used.
	File string
}

// DefaultOptions returns the built-in engine options.
func DefaultOptions() Options {
	return Options{
		Debug:           true,
		Cache:           Cache{Enabled: false},
		Autoescape:      true,
		StrictVariables: true,
		Charset:         "utf-8",
	}
}

// Default returns a Config with the built-in options and no globals.
func Default() *Config {
	return &Config{
		Options: DefaultOptions(),
		Globals: map[string]any{},
	}
}

// optionSetters lists the recognized option keys. Keys in a user file that are
// not listed here (and are not "globals") are ignored.
var optionSetters = map[string]func(*Options, json.RawMessage) error{
	"debug":            func(o *Options, v json.RawMessage) error { return json.Unmarshal(v, &o.Debug) },
	"cache":            func(o *Options, v json.RawMessage) error { return json.Unmarshal(v, &o.Cache) },
	"autoescape":       func(o *Options, v json.RawMessage) error { return json.Unmarshal(v, &o.Autoescape) },
	"strict_variables": func(o *Options, v json.RawMessage) error { return json.Unmarshal(v, &o.StrictVariables) },
	"charset":          func(o *Options, v json.RawMessage) error { return json.Unmarshal(v, &o.Charset) },
}

// Load reads FileName from root and merges it over the defaults. A missing
// file is not an error. Any problem with an existing file is returned as a
// *ConfigError.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, &ConfigError{
			Status:  http.StatusInternalServerError,
			File:    path,
			Title:   "Could not read config file",
			Message: err.Error(),
			Err:     err,
		}
	}

	return Parse(path, data)
}

// Parse merges the JSON document data over the defaults. path is only used for
// error reporting.
func Parse(path string, data []byte) (*Config, error) {
	cfg := Default()
	cfg.File = path

	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return nil, newSyntaxError(path, data, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Valid JSON, but not an object. Nothing to merge.
		return cfg, nil
	}

	for key, raw := range fields {
		set, ok := optionSetters[key]
		if !ok {
			continue
		}
		if err := set(&cfg.Options, raw); err != nil {
			return nil, newOptionError(path, data, key, err)
		}
	}

	if raw, ok := fields["globals"]; ok {
		var globals map[string]any
		if err := json.Unmarshal(raw, &globals); err == nil && globals != nil {
			cfg.Globals = globals
		}
	}

	return cfg, nil
}

// WriteDefault creates FileName in root with the default options and an
// example global. An existing file is left untouched and created is false.
func WriteDefault(root string) (created bool, err error) {
	path := filepath.Join(root, FileName)
	if _, err = os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	doc := struct {
		Options
		Globals map[string]any `json:"globals"`
	}{
		Options: DefaultOptions(),
		Globals: map[string]any{"site_name": "My prototype"},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal default config: %w", err)
	}
	data = append(data, '\n')

	if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
