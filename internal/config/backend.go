// Package config loads the two YAML configuration surfaces the compile
// driver consumes: backend device templates and view-binding
// profiles, plus .asdlrc discovery for library search roots and defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SystemDevice is one backend template entry, keyed by the well-known
// placeholder names (__netlist_header__,
// __subckt_call__, etc).
type SystemDevice struct {
	Template string `yaml:"template"`
}

// Backend is one backend's full set of system-device templates.
type Backend struct {
	SystemDevices map[string]SystemDevice `yaml:"system_devices"`
	// BracketedNumeric enables the ADR-0018 rendering policy: an atom whose
	// pattern_origin carries an integer pattern part emits as "base[n]"
	// rather than its plain literal. Identity (collision checks, query
	// results) is unaffected — this only changes emitted text.
	BracketedNumeric bool `yaml:"bracketed_numeric"`
}

// BackendConfig maps a backend name to its templates.
type BackendConfig map[string]Backend

// RequiredKeys are the template keys the Renderer requires; a
// backend missing one of these is incomplete, not merely sparse.
var RequiredKeys = []string{
	"__netlist_header__", "__netlist_footer__",
	"__subckt_header__", "__subckt_header_params__",
	"__subckt_footer__", "__top_header__", "__top_footer__",
	"__subckt_call__", "__subckt_call_params__",
}

// LoadBackendConfig reads and parses a backend config file.
func LoadBackendConfig(path string) (BackendConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backend config %s: %w", path, err)
	}

	var cfg BackendConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse backend config %s: %w", path, err)
	}

	return cfg, nil
}

// Template looks up one template key for a backend, reporting whether it was
// present at all (an empty string is a valid, if unusual, template).
func (c BackendConfig) Template(backend, key string) (string, bool) {
	b, ok := c[backend]
	if !ok {
		return "", false
	}

	d, ok := b.SystemDevices[key]

	return d.Template, ok
}
