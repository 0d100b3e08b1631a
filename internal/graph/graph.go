package graph

import (
	"fmt"
	"sync"

	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/symtab"
)

// Graph stores every reachable module by id and the global symbol
// union-find. It is written by the loader's single driver goroutine as
// each module task reports in, then read and rewritten in place by the
// linker (single-threaded, in execution order).
type Graph struct {
	mu        sync.RWMutex
	normal    map[moduleid.ID]*NormalModule
	external  map[moduleid.ID]*ExternalModule
	entries   []moduleid.ID
	dynamicIn []moduleid.ID

	Symbols *symtab.UnionFind
}

func New() *Graph {
	return &Graph{
		normal:   make(map[moduleid.ID]*NormalModule),
		external: make(map[moduleid.ID]*ExternalModule),
		Symbols:  symtab.New(),
	}
}

// AddNormalModule inserts m, keyed by m.ID. A module id must appear at
// most once; callers must have already claimed the id through a
// moduleid.Registry before calling this.
func (g *Graph) AddNormalModule(m *NormalModule) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.normal[m.ID] = m
}

func (g *Graph) AddExternalModule(m *ExternalModule) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.external[m.ID] = m
}

func (g *Graph) GetOrCreateExternal(id moduleid.ID) *ExternalModule {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m, ok := g.external[id]; ok {
		return m
	}
	m := NewExternalModule(id)
	g.external[id] = m
	return m
}

func (g *Graph) Normal(id moduleid.ID) (*NormalModule, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.normal[id]
	return m, ok
}

func (g *Graph) External(id moduleid.ID) (*ExternalModule, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.external[id]
	return m, ok
}

// IsExternal reports whether id is known to the graph as an external
// module. Used by the linker to decide which linking branch applies.
func (g *Graph) IsExternal(id moduleid.ID) bool {
	if id.External {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.external[id]
	return ok
}

func (g *Graph) AllNormal() map[moduleid.ID]*NormalModule {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[moduleid.ID]*NormalModule, len(g.normal))
	for k, v := range g.normal {
		out[k] = v
	}
	return out
}

func (g *Graph) SetEntries(entries []moduleid.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = append([]moduleid.ID(nil), entries...)
}

// Entries returns the user-defined entry ids in the order Load resolved
// them, so callers never need to reconstruct that order from the
// (unordered) module map.
func (g *Graph) Entries() []moduleid.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]moduleid.ID(nil), g.entries...)
}

func (g *Graph) AddDynamicEntries(ids []moduleid.ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dynamicIn = append(g.dynamicIn, ids...)
}

func (g *Graph) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprintf("graph{normal=%d external=%d entries=%d}", len(g.normal), len(g.external), len(g.entries))
}
