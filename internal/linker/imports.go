package linker

import (
	"sort"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/logger"
	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/symtab"
)

// linkImports runs over every non-external module in execution order.
// It must run after linkExports so every importee's linked_exports table
// (including anything it itself re-exports) is already final.
func linkImports(g *graph.Graph, order []moduleid.ID, cfg Config, log logger.Log) error {
	for _, id := range order {
		importer, ok := g.Normal(id)
		if !ok {
			continue
		}
		importeeIDs := sortedImportKeys(importer.Imports)
		for _, importeeID := range importeeIDs {
			specs := sortedImportSpecs(importer.Imports[importeeID])
			if err := linkOneImportGroup(g, importer, importeeID, specs, cfg, log); err != nil {
				return &FatalError{Module: id.Path, Err: err}
			}
		}
	}
	return nil
}

func linkOneImportGroup(g *graph.Graph, importer *graph.NormalModule, importeeID moduleid.ID, specs []graph.ImportedSpecifier, cfg Config, log logger.Log) error {
	if importeeID == importer.ID {
		for _, s := range specs {
			if err := linkAgainstNormal(g, importer, importer, s, cfg, log); err != nil {
				return err
			}
		}
		return nil
	}

	if g.IsExternal(importeeID) {
		ext := g.GetOrCreateExternal(importeeID)
		for _, s := range specs {
			importer.AddLinkedImport(importeeID, s)
			g.Symbols.Union(s.ImportedAs, ext.InternedSymbol(s.Imported))
		}
		return nil
	}

	importee, ok := g.Normal(importeeID)
	if !ok {
		// The dependency never made it into the graph; nothing to link
		// against. This only happens alongside an already-reported loader
		// error, so it is silently skipped here rather than re-reported.
		return nil
	}
	for _, s := range specs {
		if err := linkAgainstNormal(g, importer, importee, s, cfg, log); err != nil {
			return err
		}
	}
	return nil
}

func linkAgainstNormal(g *graph.Graph, importer, importee *graph.NormalModule, s graph.ImportedSpecifier, cfg Config, log logger.Log) error {
	if s.Imported == "*" {
		importee.MarkNamespaceReferenced()
	}
	importer.SuggestedNames[s.Imported] = s.ImportedAs.Name

	if cfg.ShimMissingExports {
		if _, found := importee.LinkedExports[s.Imported]; !found {
			shimMissingExport(importee, s.Imported, log)
		}
	}

	if exported, found := importee.LinkedExports[s.Imported]; found {
		g.Symbols.Union(s.ImportedAs, exported.LocalID)
		importer.AddLinkedImport(exported.Owner, graph.ImportedSpecifier{Imported: exported.ExportedAs, ImportedAs: s.ImportedAs})
		return nil
	}

	if len(importee.ExternalModulesOfReExportAll) > 0 {
		candidates := sortedIDs(importee.ExternalModulesOfReExportAll)
		chosen := candidates[0]
		if len(candidates) > 1 {
			logger.AddWarning(log, importer.ID.Path, logger.AmbiguousExternalNamespaces,
				ambiguousNamespacesText(s.Imported, importee.ID.Path, chosen, candidates))
		}

		symInImportee := symtab.Symbol{Owner: importee.ID, Name: s.Imported, Disambiguator: len(importee.LinkedExports)}
		importee.AddLinkedImport(chosen, graph.ImportedSpecifier{Imported: s.Imported, ImportedAs: symInImportee})
		importee.LinkedExports[s.Imported] = graph.ExportedSpecifier{ExportedAs: s.Imported, LocalID: symInImportee, Owner: importee.ID}

		importer.AddLinkedImport(importee.ID, s)
		g.Symbols.Union(s.ImportedAs, symInImportee)
		return nil
	}

	return &MissingExportError{Name: s.Imported, Importer: importer.ID.Path, Importee: importee.ID.Path}
}

func ambiguousNamespacesText(name, importee string, chosen moduleid.ID, candidates []moduleid.ID) string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.String()
	}
	return "import of " + name + " through " + importee + " is ambiguous among external namespaces " +
		joinStrings(names) + "; picked " + chosen.String()
}

func joinStrings(xs []string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ", "
		}
		out += x
	}
	return out
}

func sortedImportKeys(m map[moduleid.ID]map[graph.ImportedSpecifier]struct{}) []moduleid.ID {
	out := make([]moduleid.ID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func sortedImportSpecs(set map[graph.ImportedSpecifier]struct{}) []graph.ImportedSpecifier {
	out := make([]graph.ImportedSpecifier, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	// Sort by imported name for determinism, applied uniformly since the
	// same non-determinism from map iteration exists for every importee,
	// not just self-imports.
	sort.Slice(out, func(i, j int) bool { return out[i].Imported < out[j].Imported })
	return out
}
