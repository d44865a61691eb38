// Package linker implements the Import Resolver: it walks the
// file dependency graph from an entry file, resolves `imports` against an
// ordered list of search roots, resolves every `model_alias` and instance
// reference, and produces a single LinkedProgram keyed by stable file ids.
package linker

import (
	"fmt"
	"path/filepath"

	"github.com/asdl-lang/asdlc/internal/ast"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/source"
)

// Loader fetches and parses the file named by a resolved file id. The core
// never touches the filesystem directly — this callback is the sole
// collaborator boundary the core requires.
type Loader func(fileID ids.FileID) (*ast.File, error)

// SearchRoots is the ordered list of root tiers consulted when resolving an
// import path: (1) the importing file's own directory is
// supplied per-call, the remaining tiers are fixed for the whole link.
type SearchRoots struct {
	// CLI holds --lib roots, highest precedence after the importing file's
	// own directory.
	CLI []string
	// AsdlRC holds lib_roots from a discovered .asdlrc.
	AsdlRC []string
	// EnvPath holds roots from ASDL_LIB_PATH.
	EnvPath []string
}

// tiers returns every non-importer-relative root in precedence order.
func (r SearchRoots) tiers() []string {
	var out []string
	out = append(out, r.CLI...)
	out = append(out, r.AsdlRC...)
	out = append(out, r.EnvPath...)

	return out
}

// RefKind classifies what an instance's ref_raw was resolved to.
type RefKind uint8

const (
	// RefDevice indicates ref_raw resolved to a primitive device.
	RefDevice RefKind = iota
	// RefModule indicates ref_raw resolved to a hierarchical module.
	RefModule
)

// ResolvedRef records the outcome of resolving one Instance.ref_raw.
type ResolvedRef struct {
	Kind   RefKind
	FileID ids.FileID
	Name   string // module/device Name as declared (may include "@view")
}

// LinkedFile pairs a parsed File with the resolution results computed for
// it: each instance's resolved reference, and the file's local alias
// environment (model_alias plus imports).
type LinkedFile struct {
	AST *ast.File
	// InstanceRefs maps (module index, instance index) to its resolved
	// reference. Keyed by a flat string "<moduleIdx>:<instIdx>" to avoid a
	// nested map of maps.
	InstanceRefs map[string]ResolvedRef
	// ModelAlias maps a local model_alias short name to its resolved
	// qualified target.
	ModelAlias map[string]ResolvedRef
}

func instKey(moduleIdx, instIdx int) string {
	return fmt.Sprintf("%d:%d", moduleIdx, instIdx)
}

// LinkedProgram is the output of Link: every reachable file, resolved.
type LinkedProgram struct {
	Entry ids.FileID
	Files map[ids.FileID]*LinkedFile
	// Order records the DFS post-order (children before parents) in which
	// files were first fully processed, used downstream to keep emission
	// deterministic.
	Order []ids.FileID
}

const component = 1 // Import Resolver's stage index for diagnostic ordering.

// Link performs the DFS import resolution.
func Link(entry ids.FileID, loader Loader, roots SearchRoots) (*LinkedProgram, []source.Diagnostic) {
	l := &linker{
		loader:   loader,
		roots:    roots,
		files:    map[ids.FileID]*LinkedFile{},
		visiting: map[ids.FileID]bool{},
		sink:     source.NewSink(),
	}

	l.visit(entry, "")

	if l.sink.HasErrors() {
		return nil, l.sink.All()
	}

	l.resolveAliasesAndRefs()

	return &LinkedProgram{Entry: entry, Files: l.files, Order: l.order}, l.sink.All()
}

type linker struct {
	loader   Loader
	roots    SearchRoots
	files    map[ids.FileID]*LinkedFile
	visiting map[ids.FileID]bool
	order    []ids.FileID
	sink     *source.Sink
}

// visit loads fileID (if not already loaded), recursing into its imports.
// importerDir is the directory of the file that imported fileID ("" for the
// entry file); visit does not read it, since every caller passes an
// already-resolved id that is loaded directly.
func (l *linker) visit(fileID ids.FileID, importerDir string) {
	if l.visiting[fileID] {
		l.sink.Report(source.Diagnostic{
			Code: "E0442", Severity: source.Error, Component: component,
			Message: fmt.Sprintf("circular import detected at %q", fileID),
		})

		return
	}

	if _, ok := l.files[fileID]; ok {
		return
	}

	l.visiting[fileID] = true
	defer delete(l.visiting, fileID)

	f, err := l.loader(fileID)
	if err != nil {
		l.sink.Report(source.Diagnostic{
			Code: "E0441", Severity: source.Error, Component: component,
			Message: fmt.Sprintf("failed to load %q: %s", fileID, err),
		})

		return
	}

	l.files[fileID] = &LinkedFile{AST: f, InstanceRefs: map[string]ResolvedRef{}, ModelAlias: map[string]ResolvedRef{}}

	dir := filepath.Dir(string(fileID))

	for _, importPath := range sortedValues(f.Imports) {
		resolved, diags := l.resolveImportPath(dir, importPath)
		l.sink.Append(sinkFrom(diags))

		if resolved != "" {
			l.visit(resolved, dir)
		}
	}

	l.order = append(l.order, fileID)
}

func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}

	return out
}

func sinkFrom(diags []source.Diagnostic) *source.Sink {
	s := source.NewSink()
	for _, d := range diags {
		s.Report(d)
	}

	return s
}

// resolveImportPath resolves a single import path against the ordered root
// list: (1) the importer's directory, (2) CLI --lib roots, (3) .asdlrc
// lib_roots, (4) ASDL_LIB_PATH. It returns the unique resolved file id, or
// diagnostics (E0441 none found, E0447 ambiguous).
func (l *linker) resolveImportPath(importerDir, importPath string) (ids.FileID, []source.Diagnostic) {
	if containsParamRef(importPath) {
		return "", []source.Diagnostic{{
			Code: "E0441", Severity: source.Error, Component: component,
			Message: fmt.Sprintf("parameterized import paths are not supported: %q", importPath),
		}}
	}

	var (
		probed   []string
		matches  []ids.FileID
	)

	tryRoot := func(root string) {
		candidate := filepath.Join(root, importPath)
		probed = append(probed, candidate)

		if _, err := l.loader(ids.FileID(candidate)); err == nil {
			matches = append(matches, ids.FileID(candidate))
		}
	}

	tryRoot(importerDir)

	for _, root := range l.roots.tiers() {
		tryRoot(root)
	}

	switch len(matches) {
	case 0:
		return "", []source.Diagnostic{{
			Code: "E0441", Severity: source.Error, Component: component,
			Message: fmt.Sprintf("could not resolve import %q; probed: %v", importPath, probed),
		}}
	case 1:
		return matches[0], nil
	default:
		return "", []source.Diagnostic{{
			Code: "E0447", Severity: source.Error, Component: component,
			Message: fmt.Sprintf("ambiguous import %q; matched: %v", importPath, matches),
		}}
	}
}

func containsParamRef(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '$' && s[i+1] == '{' {
			return true
		}
	}

	return false
}
