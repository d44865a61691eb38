package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Match is a rule's selector; a selector field left empty never matches on
// its own (all non-empty fields must match for the rule to apply).
type Match struct {
	Path   string `yaml:"path,omitempty"`
	Inst   string `yaml:"inst,omitempty"`
	Module string `yaml:"module,omitempty"`
}

// Rule overrides the baseline view for instances it matches; later rules in
// declaration order win over earlier ones.
type Rule struct {
	ID    string `yaml:"id,omitempty"`
	Match Match  `yaml:"match"`
	View  string `yaml:"view"`
}

// Profile is a named view-binding policy: a baseline view_order per logical
// cell, plus ordered override rules.
type Profile struct {
	ViewOrder map[string][]string `yaml:"view_order"`
	Rules     []Rule               `yaml:"rules"`
}

// ViewConfig is the root of a view config file.
type ViewConfig struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadViewConfig reads and parses a view config file.
func LoadViewConfig(path string) (*ViewConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read view config %s: %w", path, err)
	}

	var cfg ViewConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse view config %s: %w", path, err)
	}

	return &cfg, nil
}

// Baseline returns the head of a cell's view_order, i.e. the view chosen
// before any rule is applied. Returns "" (default view) if the cell has no
// configured order.
func (p Profile) Baseline(cell string) string {
	order, ok := p.ViewOrder[cell]
	if !ok || len(order) == 0 {
		return ""
	}

	return order[0]
}

// Matches reports whether a rule's selector applies to the given site. Every
// non-empty selector field must match; a rule with no selector fields at all
// never matches (it would otherwise apply everywhere, silently).
func (r Rule) Matches(path, inst, module string) bool {
	matched := false

	if r.Match.Path != "" {
		if r.Match.Path != path {
			return false
		}

		matched = true
	}

	if r.Match.Inst != "" {
		if r.Match.Inst != inst {
			return false
		}

		matched = true
	}

	if r.Match.Module != "" {
		if r.Match.Module != module {
			return false
		}

		matched = true
	}

	return matched
}

// ResolveView computes the final view for one instantiation site: the
// baseline for cell, then every matching rule in order, later wins.
func (p Profile) ResolveView(cell, path, inst string) string {
	view := p.Baseline(cell)

	for _, r := range p.Rules {
		if r.Matches(path, inst, cell) {
			view = r.View
		}
	}

	return view
}
