package linker

import (
	"fmt"
	"strings"

	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/source"
)

// resolveAliasesAndRefs runs after every reachable file has been loaded: it
// resolves each file's model_alias table and then every instance's
// ref_raw, per the three-step lookup below.
func (l *linker) resolveAliasesAndRefs() {
	for fileID, lf := range l.files {
		l.resolveModelAlias(fileID, lf)
	}

	for fileID, lf := range l.files {
		l.resolveInstanceRefs(fileID, lf)
	}
}

func (l *linker) resolveModelAlias(fileID ids.FileID, lf *LinkedFile) {
	for _, entry := range lf.AST.ModelAlias {
		if _, collides := lf.AST.Imports[entry.Alias]; collides {
			l.sink.Report(source.Diagnostic{
				Code: "E0445", Severity: source.Error, Component: component, File: string(fileID), Span: entry.Span, HasSpan: true,
				Message: fmt.Sprintf("model_alias %q collides with an import alias", entry.Alias),
			})

			continue
		}

		impAlias, moduleName, ok := strings.Cut(entry.ModuleName, ".")
		if !ok {
			// Bare module name: resolved within the same file.
			local, found := findModuleOrDevice(lf, entry.ModuleName)
			if !found {
				l.sink.Report(source.Diagnostic{
					Code: "E0448", Severity: source.Error, Component: component, File: string(fileID), Span: entry.Span, HasSpan: true,
					Message: fmt.Sprintf("model_alias %q refers to unknown module %q", entry.Alias, entry.ModuleName),
				})

				continue
			}

			lf.ModelAlias[entry.Alias] = ResolvedRef{Kind: local.kind, FileID: fileID, Name: entry.ModuleName}

			continue
		}

		importPath, hasImport := lf.AST.Imports[impAlias]
		if !hasImport {
			l.sink.Report(source.Diagnostic{
				Code: "E0444", Severity: source.Error, Component: component, File: string(fileID), Span: entry.Span, HasSpan: true,
				Message: fmt.Sprintf("model_alias %q references unknown alias %q", entry.Alias, impAlias),
			})

			continue
		}

		targetID, diags := l.resolveImportPath(dirOf(fileID), importPath)
		if len(diags) > 0 {
			l.sink.Append(sinkFrom(diags))

			continue
		}

		target, ok := l.files[targetID]
		if !ok {
			continue
		}

		remote, found := findModuleOrDevice(target, moduleName)
		if !found {
			l.sink.Report(source.Diagnostic{
				Code: "E0448", Severity: source.Error, Component: component, File: string(fileID), Span: entry.Span, HasSpan: true,
				Message: fmt.Sprintf("model_alias %q refers to unknown module %q in %q", entry.Alias, moduleName, importPath),
			})

			continue
		}

		lf.ModelAlias[entry.Alias] = ResolvedRef{Kind: remote.kind, FileID: targetID, Name: moduleName}
	}
}

func (l *linker) resolveInstanceRefs(fileID ids.FileID, lf *LinkedFile) {
	for mi, mod := range lf.AST.Modules {
		for ii, inst := range mod.Instances {
			ref, warn, ok := l.resolveOneRef(fileID, lf, inst.RefRaw)
			if !ok {
				l.sink.Report(source.Diagnostic{
					Code: "E0448", Severity: source.Error, Component: component, File: string(fileID), Span: inst.Span, HasSpan: true,
					Message: fmt.Sprintf("unresolved instance reference %q", inst.RefRaw),
				})

				continue
			}

			if warn {
				l.sink.Report(source.Diagnostic{
					Code: "P07-SHADOW", Severity: source.Warning, Component: component, File: string(fileID), Span: inst.Span, HasSpan: true,
					Message: fmt.Sprintf("reference %q resolves locally, shadowing a model_alias of the same name", inst.RefRaw),
				})
			}

			lf.InstanceRefs[instKey(mi, ii)] = ref
		}
	}
}

// resolveOneRef performs the three-step lookup: (1) local
// modules/devices in the same file, (2) model_alias indirection, (3)
// "alias.module" qualified form via imports. LocalWins: if a name resolves
// both locally and via model_alias, the local definition wins and a
// shadowing warning is returned.
func (l *linker) resolveOneRef(fileID ids.FileID, lf *LinkedFile, refRaw string) (ResolvedRef, bool, bool) {
	localRef, localOK := findModuleOrDevice(lf, refRaw)

	aliasRef, aliasOK := lf.ModelAlias[refRaw]

	if localOK && aliasOK {
		return ResolvedRef{Kind: localRef.kind, FileID: fileID, Name: refRaw}, true, true
	}

	if localOK {
		return ResolvedRef{Kind: localRef.kind, FileID: fileID, Name: refRaw}, false, true
	}

	if aliasOK {
		return aliasRef, false, true
	}

	if impAlias, moduleName, ok := strings.Cut(refRaw, "."); ok {
		importPath, hasImport := lf.AST.Imports[impAlias]
		if !hasImport {
			return ResolvedRef{}, false, false
		}

		targetID, diags := l.resolveImportPath(dirOf(fileID), importPath)
		if len(diags) > 0 {
			return ResolvedRef{}, false, false
		}

		target, ok := l.files[targetID]
		if !ok {
			return ResolvedRef{}, false, false
		}

		if found, ok := findModuleOrDevice(target, moduleName); ok {
			return ResolvedRef{Kind: found.kind, FileID: targetID, Name: moduleName}, false, true
		}
	}

	return ResolvedRef{}, false, false
}

type localFound struct {
	kind RefKind
}

func findModuleOrDevice(lf *LinkedFile, name string) (localFound, bool) {
	for _, m := range lf.AST.Modules {
		if m.Cell() == name || m.Name == name {
			return localFound{kind: RefModule}, true
		}
	}

	for _, d := range lf.AST.Devices {
		if d.Name == name {
			return localFound{kind: RefDevice}, true
		}
	}

	return localFound{}, false
}

func dirOf(fileID ids.FileID) string {
	idx := strings.LastIndexByte(string(fileID), '/')
	if idx < 0 {
		return "."
	}

	return string(fileID)[:idx]
}
