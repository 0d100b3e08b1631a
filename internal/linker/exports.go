package linker

import (
	"sort"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/logger"
	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/symtab"
)

// linkExports runs over every non-external module in execution order.
// It must run before linkImports: the imports pass looks up names in an
// importee's linked_exports and requires that table to already reflect
// every re-export the importee itself forwards.
func linkExports(g *graph.Graph, order []moduleid.ID, cfg Config, log logger.Log) error {
	for _, id := range order {
		m, ok := g.Normal(id)
		if !ok {
			continue
		}
		if err := linkNamedReExports(g, m, cfg, log); err != nil {
			return &FatalError{Module: id.Path, Err: err}
		}
		linkWildcardReExports(g, m)
	}
	return nil
}

func linkNamedReExports(g *graph.Graph, importer *graph.NormalModule, cfg Config, log logger.Log) error {
	// Deterministic order independent of map iteration.
	importeeIDs := sortedKeys(importer.ReExportedIDs)

	for _, importeeID := range importeeIDs {
		specs := sortedExportSpecs(importer.ReExportedIDs[importeeID])

		for _, spec := range specs {
			if importeeID == importer.ID {
				existing, ok := importer.LinkedExports[spec.Imported()]
				if !ok {
					return &CircularReExportError{Name: spec.Imported(), File: importer.ID.Path}
				}
				importer.LinkedExports[spec.ExportedAs] = existing
				continue
			}

			importer.SuggestedNames[spec.Imported()] = spec.ExportedAs
			if spec.Imported() == "*" {
				if m, ok := g.Normal(importeeID); ok {
					m.MarkNamespaceReferenced()
				}
			}

			if g.IsExternal(importeeID) {
				g.GetOrCreateExternal(importeeID)

				symName := spec.ExportedAs
				if symName == "default" {
					symName = spec.Imported()
				}
				newSym := symtab.Symbol{Owner: importer.ID, Name: symName, Disambiguator: 0}

				importer.AddLinkedImport(importeeID, graph.ImportedSpecifier{Imported: spec.Imported(), ImportedAs: newSym})
				importer.LinkedExports[spec.ExportedAs] = graph.ExportedSpecifier{
					ExportedAs: spec.ExportedAs,
					LocalID:    newSym,
					Owner:      importer.ID,
				}
				continue
			}

			importee, ok := g.Normal(importeeID)
			if !ok {
				return &MissingExportError{Name: spec.Imported(), Importer: importer.ID.Path, Importee: importeeID.Path}
			}

			if cfg.ShimMissingExports {
				if _, found := importee.LinkedExports[spec.Imported()]; !found {
					shimMissingExport(importee, spec.Imported(), log)
				}
			}

			found, ok := importee.LinkedExports[spec.Imported()]
			if !ok {
				return &MissingExportError{Name: spec.Imported(), Importer: importer.ID.Path, Importee: importeeID.Path}
			}
			importer.LinkedExports[spec.ExportedAs] = found
		}
	}
	return nil
}

// reExportSpec pairs an ExportedSpecifier with convenience accessors; the
// field names in graph.ExportedSpecifier name the *importer's* export-side
// view, so "Imported" below reads the name on the exporter side that the
// re-export statement named.
type reExportSpec struct {
	graph.ExportedSpecifier
}

func (s reExportSpec) Imported() string { return s.LocalID.Name }

func sortedExportSpecs(set map[graph.ExportedSpecifier]struct{}) []reExportSpec {
	out := make([]reExportSpec, 0, len(set))
	for spec := range set {
		out = append(out, reExportSpec{spec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExportedAs < out[j].ExportedAs })
	return out
}

// linkWildcardReExports implements wildcard re-export handling:
// transitive propagation of "export * from" targets, conflict hiding
// between disagreeing sources, and precedence of explicit named exports
// over anything wildcard-derived.
func linkWildcardReExports(g *graph.Graph, importer *graph.NormalModule) {
	targets := sortedIDs(importer.ReExportAll)

	type candidate struct {
		spec     graph.ExportedSpecifier
		conflict bool
	}
	byName := make(map[string]candidate)

	for _, targetID := range targets {
		if targetID == importer.ID {
			continue // re-exporting from oneself is a no-op
		}
		target, ok := g.Normal(targetID)
		if !ok {
			continue
		}
		// A wildcard source gets a namespace object from the patch pass.
		target.MarkNamespaceReferenced()

		// Transitive closure: this target's own wildcard sources become
		// the importer's wildcard sources too.
		for inner := range target.ReExportAll {
			importer.ReExportAll[inner] = struct{}{}
		}
		for inner := range target.ExternalModulesOfReExportAll {
			importer.ExternalModulesOfReExportAll[inner] = struct{}{}
		}

		for name, spec := range target.LinkedExports {
			if name == "default" {
				continue // default is never wildcard-propagated
			}
			existing, seen := byName[name]
			if !seen {
				byName[name] = candidate{spec: spec}
				continue
			}
			if existing.spec != spec {
				byName[name] = candidate{spec: existing.spec, conflict: true}
			}
		}
	}

	for _, targetID := range targets {
		if targetID != importer.ID && g.IsExternal(targetID) {
			importer.ExternalModulesOfReExportAll[targetID] = struct{}{}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cand := byName[name]
		if cand.conflict {
			continue // names that disagree between sources are hidden entirely
		}
		if _, explicit := importer.LinkedExports[name]; explicit {
			continue // explicit named exports of the importer win
		}
		importer.LinkedExports[name] = cand.spec
	}
}

func sortedKeys(m map[moduleid.ID]map[graph.ExportedSpecifier]struct{}) []moduleid.ID {
	out := make([]moduleid.ID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func sortedIDs(m map[moduleid.ID]struct{}) []moduleid.ID {
	out := make([]moduleid.ID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
