// Package scanner is a reference implementation of the parser/scanner
// collaborator. It is intentionally not a real JavaScript or TypeScript
// parser - that pipeline is explicitly out of this module's scope - but a
// small regex-based front end over the subset of ESM import/export syntax
// needed to exercise the loader and linker end to end. Loader kind
// (TS/TSX decorator lowering, type stripping, JSX transform, etc.) is
// accepted and threaded through untouched; this scanner does not itself
// transform anything.
package scanner

import (
	"context"
	"regexp"
	"strings"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/loader"
	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/symtab"
)

var (
	importDefaultOrNamed = regexp.MustCompile(`(?m)^\s*import\s+(?:([A-Za-z_$][\w$]*)\s*,?\s*)?(?:\{([^}]*)\})?\s*(?:\*\s*as\s+([A-Za-z_$][\w$]*))?\s*from\s*["']([^"']+)["']`)
	importSideEffect     = regexp.MustCompile(`(?m)^\s*import\s*["']([^"']+)["']\s*;?\s*$`)
	dynamicImport        = regexp.MustCompile(`\bimport\s*\(\s*["']([^"']+)["']\s*\)`)
	exportNamedFrom      = regexp.MustCompile(`(?m)^\s*export\s*\{([^}]*)\}\s*from\s*["']([^"']+)["']`)
	exportNamedLocal     = regexp.MustCompile(`(?m)^\s*export\s*\{([^}]*)\}\s*;?\s*$`)
	exportStarAs         = regexp.MustCompile(`(?m)^\s*export\s*\*\s*as\s+([A-Za-z_$][\w$]*)\s*from\s*["']([^"']+)["']`)
	exportStar           = regexp.MustCompile(`(?m)^\s*export\s*\*\s*from\s*["']([^"']+)["']`)
	exportDecl           = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:const|let|var|function\*?|class|async function\*?)\s+([A-Za-z_$][\w$]*)`)
	exportDefaultExpr    = regexp.MustCompile(`(?m)^\s*export\s+default\b`)
)

// Scanner is the reference regex-based Scanner.
type Scanner struct{}

func New() *Scanner {
	return &Scanner{}
}

// Scan implements loader.Scanner.
func (s *Scanner) Scan(ctx context.Context, id string, source string, kind loader.FileKind) (graph.Scan, error) {
	owner := moduleid.ID{Path: id}
	scan := graph.Scan{
		AST:           source,
		Imports:       make(map[string][]graph.ImportedSpecifier),
		ReExportedIDs: make(map[string][]graph.ExportedSpecifier),
		LocalExports:  make(map[string]symtab.Symbol),
	}

	seenStatic := make(map[string]bool)
	addStatic := func(spec string) {
		if !seenStatic[spec] {
			seenStatic[spec] = true
			scan.StaticDependencies = append(scan.StaticDependencies, spec)
		}
	}

	for _, match := range importDefaultOrNamed.FindAllStringSubmatch(source, -1) {
		defaultName, named, nsName, spec := match[1], match[2], match[3], match[4]
		addStatic(spec)
		var specs []graph.ImportedSpecifier
		if defaultName != "" {
			specs = append(specs, graph.ImportedSpecifier{
				Imported:   "default",
				ImportedAs: symtab.Symbol{Owner: owner, Name: defaultName},
			})
		}
		if nsName != "" {
			specs = append(specs, graph.ImportedSpecifier{
				Imported:   "*",
				ImportedAs: symtab.Symbol{Owner: owner, Name: nsName},
			})
		}
		for _, clause := range splitClauses(named) {
			imported, local := splitAs(clause)
			if imported == "" {
				continue
			}
			specs = append(specs, graph.ImportedSpecifier{
				Imported:   imported,
				ImportedAs: symtab.Symbol{Owner: owner, Name: local},
			})
		}
		scan.Imports[spec] = append(scan.Imports[spec], specs...)
	}

	for _, match := range importSideEffect.FindAllStringSubmatch(source, -1) {
		addStatic(match[1])
	}

	for _, match := range dynamicImport.FindAllStringSubmatch(source, -1) {
		scan.DynamicDependencies = append(scan.DynamicDependencies, match[1])
	}

	for _, match := range exportNamedFrom.FindAllStringSubmatch(source, -1) {
		clauses, spec := match[1], match[2]
		addStatic(spec)
		for _, clause := range splitClauses(clauses) {
			imported, exportedAs := splitAs(clause)
			if imported == "" {
				continue
			}
			scan.ReExportedIDs[spec] = append(scan.ReExportedIDs[spec], graph.ExportedSpecifier{
				ExportedAs: exportedAs,
				LocalID:    symtab.Symbol{Owner: owner, Name: imported},
				Owner:      owner,
			})
		}
	}

	for _, match := range exportStarAs.FindAllStringSubmatch(source, -1) {
		nsName, spec := match[1], match[2]
		addStatic(spec)
		scan.ReExportedIDs[spec] = append(scan.ReExportedIDs[spec], graph.ExportedSpecifier{
			ExportedAs: nsName,
			LocalID:    symtab.Symbol{Owner: owner, Name: "*"},
			Owner:      owner,
		})
	}

	for _, match := range exportStar.FindAllStringSubmatch(source, -1) {
		spec := match[1]
		addStatic(spec)
		scan.ReExportAll = append(scan.ReExportAll, spec)
	}

	disambiguator := 0
	for _, match := range exportDecl.FindAllStringSubmatch(source, -1) {
		name := match[1]
		scan.LocalExports[name] = symtab.Symbol{Owner: owner, Name: name, Disambiguator: disambiguator}
		disambiguator++
	}
	if exportDefaultExpr.MatchString(source) {
		if _, ok := scan.LocalExports["default"]; !ok {
			scan.LocalExports["default"] = symtab.Symbol{Owner: owner, Name: "default"}
		}
	}

	// Local re-exports ("export { a, b as c }" with no "from") name
	// bindings this same module already declared; record them as
	// additional entries of LocalExports rather than ReExportedIDs, since
	// there is no importee to forward through.
	for _, match := range exportNamedLocal.FindAllStringSubmatch(source, -1) {
		for _, clause := range splitClauses(match[1]) {
			local, exportedAs := splitAs(clause)
			if local == "" {
				continue
			}
			if sym, ok := scan.LocalExports[local]; ok {
				scan.LocalExports[exportedAs] = sym
			} else {
				scan.LocalExports[exportedAs] = symtab.Symbol{Owner: owner, Name: local}
			}
		}
	}

	scan.NamespaceReferenced = strings.Contains(source, "import(") || importDefaultOrNamed.MatchString(source) && strings.Contains(source, "* as ")

	return scan, nil
}

func splitClauses(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitAs turns "x" into (x, x) and "x as y" into (x, y).
func splitAs(clause string) (imported, local string) {
	fields := strings.Fields(clause)
	switch len(fields) {
	case 1:
		return fields[0], fields[0]
	case 3:
		if fields[1] == "as" {
			return fields[0], fields[2]
		}
	}
	return "", ""
}
