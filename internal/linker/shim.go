package linker

import (
	"fmt"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/logger"
	"github.com/evanw/bundlecore/internal/symtab"
)

// shimMissingExport synthesizes a binding named name bound
// to undefined, add it to the module's linked exports, and warn. It is
// idempotent: a second call for the same name is a no-op
// because the export already exists by the time it would run again.
func shimMissingExport(m *graph.NormalModule, name string, log logger.Log) {
	if _, exists := m.LinkedExports[name]; exists {
		return
	}
	sym := symtab.Symbol{Owner: m.ID, Name: name, Disambiguator: 0}
	m.LinkedExports[name] = graph.ExportedSpecifier{ExportedAs: name, LocalID: sym, Owner: m.ID}
	logger.AddWarning(log, m.ID.Path, logger.ShimmedExport, fmt.Sprintf("shimmed missing export %q with undefined", name))
}
