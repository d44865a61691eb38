package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBackendConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backend.yaml")

	yamlText := `
ngspice:
  bracketed_numeric: true
  system_devices:
    __netlist_header__:
      template: "* netlist for {top}\n"
    __subckt_call__:
      template: "X{name} {ports} {ref}\n"
`
	if err := os.WriteFile(path, []byte(yamlText), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadBackendConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tmpl, ok := cfg.Template("ngspice", "__netlist_header__")
	if !ok {
		t.Fatalf("expected __netlist_header__ to be present")
	}

	if tmpl != "* netlist for {top}\n" {
		t.Fatalf("unexpected template text: %q", tmpl)
	}

	if !cfg["ngspice"].BracketedNumeric {
		t.Fatalf("expected bracketed_numeric to be true")
	}

	if _, ok := cfg.Template("ngspice", "__subckt_footer__"); ok {
		t.Fatalf("expected missing key to report ok=false")
	}

	if _, ok := cfg.Template("spectre", "__netlist_header__"); ok {
		t.Fatalf("expected unknown backend to report ok=false")
	}
}

func TestLoadBackendConfigMissingFile(t *testing.T) {
	if _, err := LoadBackendConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
