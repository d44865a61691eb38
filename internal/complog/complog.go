// Package complog builds the Compile Log artifact: a JSON
// sibling of the emitted netlist capturing view bindings, the logical to
// emitted name map, warnings and diagnostics for tooling to consume.
package complog

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/asdl-lang/asdlc/internal/source"
	"github.com/asdl-lang/asdlc/internal/viewbind"
)

// SchemaVersion is the compile log's JSON schema version (ADR-0035).
const SchemaVersion = 1

// ViewBindingEntry mirrors viewbind.ViewBindingEntry for stable JSON field
// names independent of the internal Go type.
type ViewBindingEntry struct {
	Path string `json:"path"`
	Cell string `json:"cell"`
	View string `json:"view,omitempty"`
}

// NameMapEntry is one logical-realization to emitted-name mapping.
type NameMapEntry struct {
	Realization string `json:"realization"`
	Emitted     string `json:"emitted"`
}

// DiagnosticEntry is the JSON projection of a source.Diagnostic.
type DiagnosticEntry struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	File     string `json:"file,omitempty"`
	Message  string `json:"message"`
}

// Log is the full compile log document.
type Log struct {
	SchemaVersion    int                `json:"schema_version"`
	ViewBindings     []ViewBindingEntry `json:"view_bindings"`
	EmissionNameMap  []NameMapEntry     `json:"emission_name_map"`
	Warnings         []DiagnosticEntry  `json:"warnings"`
	Diagnostics      []DiagnosticEntry  `json:"diagnostics"`
}

// Build assembles a Log from a View Binder program and the diagnostics
// accumulated across every pass.
func Build(bp *viewbind.Program, allDiagnostics []source.Diagnostic) *Log {
	log := &Log{SchemaVersion: SchemaVersion}

	if bp != nil {
		for _, b := range bp.Bindings {
			log.ViewBindings = append(log.ViewBindings, ViewBindingEntry{Path: b.Path, Cell: b.Cell, View: b.View})
		}

		for _, m := range bp.Modules {
			log.EmissionNameMap = append(log.EmissionNameMap, NameMapEntry{
				Realization: m.Realization.Key(), Emitted: m.EmittedName,
			})
		}
	}

	for _, d := range allDiagnostics {
		entry := DiagnosticEntry{Code: d.Code, Severity: severityString(d.Severity), File: d.File, Message: d.Message}

		if d.Severity == source.Warning {
			log.Warnings = append(log.Warnings, entry)

			continue
		}

		log.Diagnostics = append(log.Diagnostics, entry)
	}

	return log
}

func severityString(s source.Severity) string {
	switch s {
	case source.Error:
		return "error"
	case source.Warning:
		return "warning"
	default:
		return "info"
	}
}

// Marshal renders the log as indented JSON.
func (l *Log) Marshal() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// DefaultPath computes "<entry>.log.json" next to the entry file, the
// default path before any --log override.
func DefaultPath(entryPath string) string {
	ext := filepath.Ext(entryPath)
	base := strings.TrimSuffix(entryPath, ext)

	return fmt.Sprintf("%s.log.json", base)
}
