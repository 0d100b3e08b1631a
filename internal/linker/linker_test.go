package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/logger"
	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/symtab"
)

func newModule(path string) *graph.NormalModule {
	return graph.NewNormalModule(moduleid.ID{Path: path}, graph.Scan{})
}

func seedLocalExport(m *graph.NormalModule, name string) symtab.Symbol {
	sym := symtab.Symbol{Owner: m.ID, Name: name}
	m.LinkedExports[name] = graph.ExportedSpecifier{ExportedAs: name, LocalID: sym, Owner: m.ID}
	return sym
}

func noopLog() logger.Log {
	return logger.NewDeferLog(nil)
}

// S1: entry imports {a} from "./m"; m exports const a = 1.
func TestS1SimpleChain(t *testing.T) {
	g := graph.New()
	m := newModule("m.js")
	symA := seedLocalExport(m, "a")

	entry := newModule("entry.js")
	entryA := symtab.Symbol{Owner: entry.ID, Name: "a"}
	entry.Imports[m.ID] = map[graph.ImportedSpecifier]struct{}{
		{Imported: "a", ImportedAs: entryA}: {},
	}
	entry.StaticDepOrder = []moduleid.ID{m.ID}

	g.AddNormalModule(m)
	g.AddNormalModule(entry)

	result, err := Link(g, []moduleid.ID{entry.ID}, Config{}, noopLog())
	require.NoError(t, err)
	require.Less(t, m.ExecOrder, entry.ExecOrder)

	imports, ok := entry.LinkedImports[m.ID]
	require.True(t, ok)
	assert.Contains(t, imports, graph.ImportedSpecifier{Imported: "a", ImportedAs: entryA})
	assert.True(t, result.Graph.Symbols.Same(entryA, symA))
}

// S2: entry: export { a } from "./m"; m: export const a = 1.
func TestS2ReExportForwarding(t *testing.T) {
	g := graph.New()
	m := newModule("m.js")
	symA := seedLocalExport(m, "a")

	entry := newModule("entry.js")
	placeholder := symtab.Symbol{Owner: entry.ID, Name: "a"}
	entry.ReExportedIDs[m.ID] = map[graph.ExportedSpecifier]struct{}{
		{ExportedAs: "a", LocalID: placeholder, Owner: entry.ID}: {},
	}
	entry.StaticDepOrder = []moduleid.ID{m.ID}

	g.AddNormalModule(m)
	g.AddNormalModule(entry)

	_, err := Link(g, []moduleid.ID{entry.ID}, Config{}, noopLog())
	require.NoError(t, err)

	exported, ok := entry.LinkedExports["a"]
	require.True(t, ok)
	assert.Equal(t, m.ID, exported.Owner)
	assert.Equal(t, symA, exported.LocalID)
	assert.Empty(t, entry.LinkedImports)
}

// S3: entry: export * from "./a"; export * from "./b"; both export
// conflicting "x". Expected: "x" absent, no error.
func TestS3WildcardConflictHides(t *testing.T) {
	g := graph.New()
	a := newModule("a.js")
	seedLocalExport(a, "x")
	b := newModule("b.js")
	seedLocalExport(b, "x")

	entry := newModule("entry.js")
	entry.ReExportAll[a.ID] = struct{}{}
	entry.ReExportAll[b.ID] = struct{}{}
	entry.StaticDepOrder = []moduleid.ID{a.ID, b.ID}

	g.AddNormalModule(a)
	g.AddNormalModule(b)
	g.AddNormalModule(entry)

	_, err := Link(g, []moduleid.ID{entry.ID}, Config{}, noopLog())
	require.NoError(t, err)

	_, exists := entry.LinkedExports["x"]
	assert.False(t, exists)
}

// S4: same as S3 but entry also explicitly declares "x". Explicit wins.
func TestS4WildcardExplicitPrecedence(t *testing.T) {
	g := graph.New()
	a := newModule("a.js")
	seedLocalExport(a, "x")
	b := newModule("b.js")
	seedLocalExport(b, "x")

	entry := newModule("entry.js")
	entrySym := seedLocalExport(entry, "x")
	entry.ReExportAll[a.ID] = struct{}{}
	entry.ReExportAll[b.ID] = struct{}{}
	entry.StaticDepOrder = []moduleid.ID{a.ID, b.ID}

	g.AddNormalModule(a)
	g.AddNormalModule(b)
	g.AddNormalModule(entry)

	_, err := Link(g, []moduleid.ID{entry.ID}, Config{}, noopLog())
	require.NoError(t, err)

	exported, ok := entry.LinkedExports["x"]
	require.True(t, ok)
	assert.Equal(t, entrySym, exported.LocalID)
	assert.Equal(t, entry.ID, exported.Owner)
}

// S5: entry: export { resolve } from "path", external.
func TestS5ExternalReExport(t *testing.T) {
	g := graph.New()
	extID := moduleid.ID{Path: "path", External: true}

	entry := newModule("entry.js")
	placeholder := symtab.Symbol{Owner: entry.ID, Name: "resolve"}
	entry.ReExportedIDs[extID] = map[graph.ExportedSpecifier]struct{}{
		{ExportedAs: "resolve", LocalID: placeholder, Owner: entry.ID}: {},
	}

	g.AddNormalModule(entry)

	_, err := Link(g, []moduleid.ID{entry.ID}, Config{}, noopLog())
	require.NoError(t, err)

	imports, ok := entry.LinkedImports[extID]
	require.True(t, ok)
	require.Len(t, imports, 1)
	var got graph.ImportedSpecifier
	for s := range imports {
		got = s
	}
	assert.Equal(t, "resolve", got.Imported)

	exported, ok := entry.LinkedExports["resolve"]
	require.True(t, ok)
	assert.Equal(t, got.ImportedAs, exported.LocalID)
	assert.Equal(t, entry.ID, exported.Owner)
}

// S6: entry imports { ghost } from "./m"; m has no ghost; shim enabled.
func TestS6MissingExportShimmed(t *testing.T) {
	g := graph.New()
	m := newModule("m.js")

	entry := newModule("entry.js")
	ghostSym := symtab.Symbol{Owner: entry.ID, Name: "ghost"}
	entry.Imports[m.ID] = map[graph.ImportedSpecifier]struct{}{
		{Imported: "ghost", ImportedAs: ghostSym}: {},
	}
	entry.StaticDepOrder = []moduleid.ID{m.ID}

	g.AddNormalModule(m)
	g.AddNormalModule(entry)

	log := noopLog()
	_, err := Link(g, []moduleid.ID{entry.ID}, Config{ShimMissingExports: true}, log)
	require.NoError(t, err)

	msgs := log.Done()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.ShimmedExport, msgs[0].ID)

	shimmed, ok := m.LinkedExports["ghost"]
	require.True(t, ok)
	assert.True(t, g.Symbols.Same(ghostSym, shimmed.LocalID))
}

// Missing export with shimming disabled is a hard error.
func TestMissingExportWithoutShimIsFatal(t *testing.T) {
	g := graph.New()
	m := newModule("m.js")

	entry := newModule("entry.js")
	ghostSym := symtab.Symbol{Owner: entry.ID, Name: "ghost"}
	entry.Imports[m.ID] = map[graph.ImportedSpecifier]struct{}{
		{Imported: "ghost", ImportedAs: ghostSym}: {},
	}
	entry.StaticDepOrder = []moduleid.ID{m.ID}

	g.AddNormalModule(m)
	g.AddNormalModule(entry)

	_, err := Link(g, []moduleid.ID{entry.ID}, Config{ShimMissingExports: false}, noopLog())
	require.Error(t, err)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	var missing *MissingExportError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ghost", missing.Name)
}

// S7: cyclic imports/exports. a: import {y} from "./b"; export const x=1.
// b: import {x} from "./a"; export const y=2.
func TestS7Cycle(t *testing.T) {
	g := graph.New()
	a := newModule("a.js")
	b := newModule("b.js")

	symX := seedLocalExport(a, "x")
	symY := seedLocalExport(b, "y")

	aY := symtab.Symbol{Owner: a.ID, Name: "y"}
	a.Imports[b.ID] = map[graph.ImportedSpecifier]struct{}{
		{Imported: "y", ImportedAs: aY}: {},
	}
	bX := symtab.Symbol{Owner: b.ID, Name: "x"}
	b.Imports[a.ID] = map[graph.ImportedSpecifier]struct{}{
		{Imported: "x", ImportedAs: bX}: {},
	}

	a.StaticDepOrder = []moduleid.ID{b.ID}
	b.StaticDepOrder = []moduleid.ID{a.ID}

	g.AddNormalModule(a)
	g.AddNormalModule(b)

	result, err := Link(g, []moduleid.ID{a.ID}, Config{}, noopLog())
	require.NoError(t, err)

	assert.NotEqual(t, graph.UnsetExecOrder, a.ExecOrder)
	assert.NotEqual(t, graph.UnsetExecOrder, b.ExecOrder)
	assert.True(t, result.Graph.Symbols.Same(aY, symY))
	assert.True(t, result.Graph.Symbols.Same(bX, symX))
}

// Transitive wildcard re-export closure.
func TestWildcardReExportTransitivity(t *testing.T) {
	g := graph.New()
	c := newModule("c.js")
	seedLocalExport(c, "z")

	b := newModule("b.js")
	b.ReExportAll[c.ID] = struct{}{}

	a := newModule("a.js")
	a.ReExportAll[b.ID] = struct{}{}
	a.StaticDepOrder = []moduleid.ID{b.ID}
	b.StaticDepOrder = []moduleid.ID{c.ID}

	g.AddNormalModule(a)
	g.AddNormalModule(b)
	g.AddNormalModule(c)

	_, err := Link(g, []moduleid.ID{a.ID}, Config{}, noopLog())
	require.NoError(t, err)

	_, inA := a.ReExportAll[c.ID]
	assert.True(t, inA)
	exported, ok := a.LinkedExports["z"]
	assert.True(t, ok)
	assert.Equal(t, c.ID, exported.Owner)
}

// default is never wildcard-propagated.
func TestDefaultNotWildcardPropagated(t *testing.T) {
	g := graph.New()
	a := newModule("a.js")
	seedLocalExport(a, "default")

	entry := newModule("entry.js")
	entry.ReExportAll[a.ID] = struct{}{}
	entry.StaticDepOrder = []moduleid.ID{a.ID}

	g.AddNormalModule(a)
	g.AddNormalModule(entry)

	_, err := Link(g, []moduleid.ID{entry.ID}, Config{}, noopLog())
	require.NoError(t, err)

	_, exists := entry.LinkedExports["default"]
	assert.False(t, exists)
}

// Two importers of the same external name share one symbol.
func TestExternalSymbolInterning(t *testing.T) {
	g := graph.New()
	extID := moduleid.ID{Path: "lodash", External: true}

	m1 := newModule("m1.js")
	sym1 := symtab.Symbol{Owner: m1.ID, Name: "x"}
	m1.Imports[extID] = map[graph.ImportedSpecifier]struct{}{
		{Imported: "debounce", ImportedAs: sym1}: {},
	}
	m2 := newModule("m2.js")
	sym2 := symtab.Symbol{Owner: m2.ID, Name: "x"}
	m2.Imports[extID] = map[graph.ImportedSpecifier]struct{}{
		{Imported: "debounce", ImportedAs: sym2}: {},
	}

	g.AddNormalModule(m1)
	g.AddNormalModule(m2)

	_, err := Link(g, []moduleid.ID{m1.ID, m2.ID}, Config{}, noopLog())
	require.NoError(t, err)
	assert.True(t, g.Symbols.Same(sym1, sym2))
}

// Self re-export of a name that doesn't exist is a CircularReExportError.
func TestCircularReExportError(t *testing.T) {
	g := graph.New()
	entry := newModule("entry.js")
	placeholder := symtab.Symbol{Owner: entry.ID, Name: "ghost"}
	entry.ReExportedIDs[entry.ID] = map[graph.ExportedSpecifier]struct{}{
		{ExportedAs: "ghost", LocalID: placeholder, Owner: entry.ID}: {},
	}

	g.AddNormalModule(entry)

	_, err := Link(g, []moduleid.ID{entry.ID}, Config{}, noopLog())
	require.Error(t, err)
	var circular *CircularReExportError
	require.ErrorAs(t, err, &circular)
}
