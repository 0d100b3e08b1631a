// Package graph is the data model: parsed modules, their raw and linked
// imports/exports, and the derived execution ordering. It is mutated by
// the loader (once, concurrently across disjoint modules), then by the
// linker (single-threaded), then by the namespace patch pass (in parallel,
// but each goroutine touches only its own module).
package graph

import (
	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/symtab"
)

// ImportedSpecifier names one binding an importer pulls in from some
// importee. Imported is the name on the exporter side ("default", "*", or
// any identifier); ImportedAs is the local binding that receives the
// value.
type ImportedSpecifier struct {
	Imported   string
	ImportedAs symtab.Symbol
}

// ExportedSpecifier names one binding an exporter makes available.
// ExportedAs is the name on the exporter side; LocalID and Owner name the
// concrete binding and the module that actually declares it, which may
// differ from the module doing the exporting (a re-export).
type ExportedSpecifier struct {
	ExportedAs string
	LocalID    symtab.Symbol
	Owner      moduleid.ID
}

// AST is the core's only view into the parsed syntax tree: opaque to this
// module, produced by the parser/scanner collaborator and consumed only by
// the downstream code-emission stage this module does not contain.
type AST interface{}

// Scan is what the parser/scanner collaborator hands back for one module:
// the shape needed to expand the graph and link it, independent of how the
// AST itself is represented.
type Scan struct {
	AST AST

	// StaticDependencies is the ordered list of specifiers statically
	// imported or re-exported from. Order matters only for the exec-order
	// DFS, which pushes them onto an explicit stack in reverse so the
	// first listed is popped, and therefore visited, first.
	StaticDependencies []string

	// DynamicDependencies lists specifiers reached only through a dynamic
	// import() expression; these seed ordering pass 2.
	DynamicDependencies []string

	// Imports maps a (still-unresolved) specifier to the specifiers
	// imported from it, before the loader resolves each one to a ModuleId.
	Imports map[string][]ImportedSpecifier

	// ReExportedIDs maps a specifier to the named re-exports pulled
	// through it ("export { x } from './m'").
	ReExportedIDs map[string][]ExportedSpecifier

	// ReExportAll lists specifiers reached through "export * from './m'".
	ReExportAll []string

	// LocalExports lists the names this module declares itself, keyed to
	// the Symbol the parser assigned each one.
	LocalExports map[string]symtab.Symbol

	// NamespaceReferenced is true if any expression in this module takes
	// the namespace object of one of its imports ("import * as ns"). This
	// is raw scan data about what this module does to its own imports; it
	// is not the same as NormalModule.NamespaceReferenced, which the
	// linker sets on the *importee* once it sees an ImportedSpecifier with
	// Imported == "*".
	NamespaceReferenced bool
}
