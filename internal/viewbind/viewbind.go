// Package viewbind implements the View Binder: it resolves the
// top realization, walks the atomized instance graph to pick a concrete
// (cell, view) realization for every reachable hierarchical module, and
// assigns collision-free emission names in DFS order.
package viewbind

import (
	"fmt"
	"strings"

	"github.com/asdl-lang/asdlc/internal/atomize"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/source"
)

// component is the View Binder's stage index for diagnostic ordering.
const component = 5

// Realization is a concrete (cell, view) pair (spec GLOSSARY).
type Realization struct {
	Cell    string
	View    string
	HasView bool
}

// Key is the realization's logical identity, used to dedupe a realization
// reached via more than one instantiation site.
func (r Realization) Key() string {
	if !r.HasView {
		return r.Cell
	}

	return r.Cell + "@" + r.View
}

// BaseEmittedName is the pre-collision emitted name: default or
// "@default" realizations emit as the bare cell name; anything else emits
// as "cell_view" with the view sanitized to an identifier-safe form.
func (r Realization) BaseEmittedName() string {
	if !r.HasView || r.View == "" || r.View == "default" {
		return r.Cell
	}

	return r.Cell + "_" + sanitize(r.View)
}

func sanitize(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r == '-' || r == ' ' || r == '.' {
			b.WriteByte('_')

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// ChildRef records which realization (or device) a specific instance within
// a BoundModule resolved to, so the NetlistIR Lowerer can look up the exact
// target without recomputing view resolution.
type ChildRef struct {
	Key      string
	Cell     string
	IsDevice bool
}

// BoundModule is one realized, reachable module or device, with its final
// emission name assigned.
type BoundModule struct {
	Realization Realization
	FileID      ids.FileID
	IsDevice    bool
	Module      *atomize.Module
	Device      *atomize.Device
	EmittedName string
	// Children maps each instance name in Module.Instances to the
	// realization/device it resolved to. Empty for device-backed entries.
	Children map[string]ChildRef
}

// ViewBindingEntry records one instantiation site's resolved view, for the
// compile log.
type ViewBindingEntry struct {
	Path string
	Cell string
	View string
}

// Program is the View Binder's output.
type Program struct {
	Top        Realization
	Modules    []*BoundModule // DFS post-order: children before parents
	ByKey      map[string]*BoundModule
	Bindings   []ViewBindingEntry
	NameMap    map[string]string // realization key -> emitted name
}

// Bind resolves realizations and emission names for the reachable subgraph
// rooted at topCell. An empty profile behaves as an
// all-defaults profile (every cell emits its baseline/default view).
func Bind(ag *atomize.Graph, topCell string, profile config.Profile) (*Program, []source.Diagnostic) {
	b := &binder{
		sink:    source.NewSink(),
		ag:      ag,
		profile: profile,
		byKey:   map[string]*BoundModule{},
		visited: map[string]bool{},
	}

	top, ok := b.resolveTop(topCell)
	if !ok {
		b.reportf(source.Error, "EMIT-001", "could not resolve a unique top realization (use --top to disambiguate)")

		return nil, b.sink.All()
	}

	b.dfs(ag.Entry, top, "/top", "")

	assignEmittedNames(b.order)

	nameMap := map[string]string{}
	for _, m := range b.order {
		nameMap[m.Realization.Key()] = m.EmittedName
	}

	return &Program{
		Top: top, Modules: b.order, ByKey: b.byKey,
		Bindings: b.bindings, NameMap: nameMap,
	}, b.sink.All()
}

type binder struct {
	sink    *source.Sink
	ag      *atomize.Graph
	profile config.Profile
	byKey   map[string]*BoundModule
	visited map[string]bool
	order   []*BoundModule
	bindings []ViewBindingEntry
}

// resolveTop identifies the entry realization: an explicit --top cell name,
// or (if the entry file declares exactly one module) that module.
func (b *binder) resolveTop(topCell string) (Realization, bool) {
	entry, ok := b.ag.Files[b.ag.Entry]
	if !ok {
		return Realization{}, false
	}

	if topCell != "" {
		for _, m := range entry.Modules {
			if m.Cell == topCell {
				view := m.View
				return Realization{Cell: m.Cell, View: view, HasView: m.HasView}, true
			}
		}

		return Realization{}, false
	}

	if len(entry.Modules) == 1 {
		for _, m := range entry.Modules {
			return Realization{Cell: m.Cell, View: m.View, HasView: m.HasView}, true
		}
	}

	return Realization{}, false
}

// dfs walks the instance graph, children before parents in the returned
// order (post-order), memoizing by realization key so a realization shared
// by multiple instantiation sites is only bound once (ADR-0036).
func (b *binder) dfs(fileID ids.FileID, r Realization, path, instName string) {
	key := r.Key()
	if b.visited[key] {
		return
	}

	b.visited[key] = true

	mod, dev, foundFileID, isDevice, ok := b.find(fileID, r)
	if !ok {
		b.reportf(source.Error, "G01-TOP-MISSING", "could not resolve realization %q", key)

		return
	}

	bm := &BoundModule{Realization: r, FileID: foundFileID, IsDevice: isDevice, Module: mod, Device: dev, Children: map[string]ChildRef{}}
	b.byKey[key] = bm

	if !isDevice {
		for _, inst := range mod.Instances {
			childPath := path + "/" + inst.Name

			cell := cellOf(inst.RefName)
			isChildDevice := inst.RefKind == linker.RefDevice

			childR := Realization{Cell: cell}
			if !isChildDevice {
				view := b.profile.ResolveView(cell, childPath, inst.Name)
				childR = Realization{Cell: cell, View: view, HasView: view != ""}

				b.bindings = append(b.bindings, ViewBindingEntry{Path: childPath, Cell: cell, View: view})
			}

			bm.Children[inst.Name] = ChildRef{Key: childR.Key(), Cell: cell, IsDevice: isChildDevice}

			b.dfs(inst.RefFileID, childR, childPath, inst.Name)
		}
	}

	b.order = append(b.order, bm)
}

// find locates the Module or Device backing realization r, preferring an
// exact "cell@view" match, then "cell@default", then the bare cell name.
func (b *binder) find(fileID ids.FileID, r Realization) (mod *atomize.Module, dev *atomize.Device, foundFile ids.FileID, isDevice, ok bool) {
	f, exists := b.ag.Files[fileID]
	if !exists {
		return nil, nil, "", false, false
	}

	candidates := []string{r.Cell}
	if r.HasView && r.View != "" {
		candidates = []string{r.Cell + "@" + r.View, r.Cell + "@default", r.Cell}
	}

	for _, name := range candidates {
		if m, ok := f.Modules[name]; ok {
			return m, nil, fileID, false, true
		}
	}

	if d, ok := f.Devices[r.Cell]; ok {
		return nil, d, fileID, true, true
	}

	return nil, nil, "", false, false
}

func cellOf(name string) string {
	for i, r := range name {
		if r == '@' {
			return name[:i]
		}
	}

	return name
}

func (b *binder) reportf(sev source.Severity, code, format string, args ...any) {
	b.sink.Report(source.Diagnostic{
		Code: code, Severity: sev, Component: component,
		Message: fmt.Sprintf(format, args...),
	})
}

// assignEmittedNames assigns collision-free names in the order modules were
// bound (DFS order), appending "__2", "__3", … ordinal suffixes to every
// realization beyond the first that wants a given base name (ADR-0034).
func assignEmittedNames(order []*BoundModule) {
	counts := map[string]int{}

	for _, m := range order {
		base := m.Realization.BaseEmittedName()
		counts[base]++

		if counts[base] == 1 {
			m.EmittedName = base

			continue
		}

		m.EmittedName = fmt.Sprintf("%s__%d", base, counts[base])
	}
}
