package graph

import (
	"sync"

	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/symtab"
)

// UnsetExecOrder is the sentinel exec_order carried by a module before the
// ordering pass assigns it a real position.
const UnsetExecOrder = -1

// NormalModule is a parsed, graph-resident module: one of the two variants
// of a graph node (the other is ExternalModule).
type NormalModule struct {
	ID moduleid.ID

	AST AST

	// StaticDepOrder and DynamicDepOrder are the resolved dependency ids in
	// scan order, the shape the ordering pass walks: the loader
	// fills these in once every specifier in a Scan has been resolved.
	StaticDepOrder  []moduleid.ID
	DynamicDepOrder []moduleid.ID

	// Imports is the raw import table scanned from the AST, before
	// linking: importee id -> the specifiers pulled from it.
	Imports map[moduleid.ID]map[ImportedSpecifier]struct{}

	// ReExportedIDs is the raw "export { x } from './m'" table: importee
	// id -> the named re-exports pulled through it.
	ReExportedIDs map[moduleid.ID]map[ExportedSpecifier]struct{}

	// ReExportAll is the set of normal-module "export * from" targets.
	ReExportAll map[moduleid.ID]struct{}

	// ExternalModulesOfReExportAll is the same, but for external targets.
	ExternalModulesOfReExportAll map[moduleid.ID]struct{}

	// LinkedImports is filled in by the linker's imports pass. The key is
	// the *owner* of the binding - the module that actually declares it -
	// not the module this file's source syntactically imports from; the
	// imports pass rewrites the key during re-export redirection.
	LinkedImports map[moduleid.ID]map[ImportedSpecifier]struct{}

	// LinkedExports is the canonical export table after linking: exported
	// name -> the concrete specifier backing it.
	LinkedExports map[string]ExportedSpecifier

	// SuggestedNames hints a friendlier identifier for a binding than its
	// raw disambiguated name, for a later renaming stage this module does
	// not implement.
	SuggestedNames map[string]string

	// NamespaceReferenced is true once some consumer takes `import * as ns`
	// of this module, or this module is reached as a wildcard re-export
	// source; the patch pass uses it to decide which modules need a
	// materialized namespace object.
	NamespaceReferenced bool

	ExecOrder int

	IsUserDefinedEntry bool

	mu sync.Mutex
}

// NewNormalModule allocates a module with every map initialized and
// ExecOrder set to the unset sentinel.
func NewNormalModule(id moduleid.ID, scan Scan) *NormalModule {
	m := &NormalModule{
		ID:                           id,
		AST:                          scan.AST,
		Imports:                      make(map[moduleid.ID]map[ImportedSpecifier]struct{}),
		ReExportedIDs:                make(map[moduleid.ID]map[ExportedSpecifier]struct{}),
		ReExportAll:                  make(map[moduleid.ID]struct{}),
		ExternalModulesOfReExportAll: make(map[moduleid.ID]struct{}),
		LinkedImports:                make(map[moduleid.ID]map[ImportedSpecifier]struct{}),
		LinkedExports:                make(map[string]ExportedSpecifier),
		SuggestedNames:               make(map[string]string),
		ExecOrder:                    UnsetExecOrder,
	}
	return m
}

// MarkNamespaceReferenced is safe to call from the parallel patch pass or
// the single-threaded linker alike: each module's own field is the only
// thing ever mutated through it.
func (m *NormalModule) MarkNamespaceReferenced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NamespaceReferenced = true
}

func (m *NormalModule) addImport(owner moduleid.ID, spec ImportedSpecifier) {
	set, ok := m.LinkedImports[owner]
	if !ok {
		set = make(map[ImportedSpecifier]struct{})
		m.LinkedImports[owner] = set
	}
	set[spec] = struct{}{}
}

// AddLinkedImport records that this module imports spec from owner's
// linked exports. Exported so both passes of the linker package can reach
// it.
func (m *NormalModule) AddLinkedImport(owner moduleid.ID, spec ImportedSpecifier) {
	m.addImport(owner, spec)
}

// ExternalModule is the other graph-node variant: a module whose source
// this bundler does not own. Its SymbolTable interns one Symbol per
// imported name so that every importer of, say, `{ resolve }` from the
// same external module shares one identity.
type ExternalModule struct {
	ID moduleid.ID

	mu      sync.Mutex
	symbols map[string]symtab.Symbol
}

func NewExternalModule(id moduleid.ID) *ExternalModule {
	return &ExternalModule{ID: id, symbols: make(map[string]symtab.Symbol)}
}

// InternedSymbol returns the single Symbol standing in for importedName on
// this external module, creating it on first use. disambiguator is 0 for
// every interned external symbol: there is exactly one per name per
// external module by construction.
func (m *ExternalModule) InternedSymbol(importedName string) symtab.Symbol {
	m.mu.Lock()
	defer m.mu.Unlock()
	sym, ok := m.symbols[importedName]
	if !ok {
		sym = symtab.Symbol{Owner: m.ID, Name: importedName, Disambiguator: 0}
		m.symbols[importedName] = sym
	}
	return sym
}
