// Package symtab assigns every declared binding a stable identity and
// merges identities that must refer to the same runtime value once the
// linker threads imports through re-exports.
//
// The merge structure follows esbuild's own internal/js_ast.Ref: a Link
// field, and MergeSymbols/FollowSymbols chase that field to find the
// representative of a set (see js_ast.go). This package generalizes that
// from a parser-local (SourceIndex, InnerIndex) pair to an
// (owner module, name, disambiguator) triple, since this module's symbols
// are not assigned by a single parser goroutine.
package symtab

import (
	"sync"

	"github.com/evanw/bundlecore/internal/moduleid"
)

// Symbol is a single declared binding: (owner_module, name, disambiguator).
// Two Symbols are equal iff all three fields are equal, which holds for
// free since Symbol is a plain comparable struct.
type Symbol struct {
	Owner         moduleid.ID
	Name          string
	Disambiguator int
}

// UnionFind merges Symbols that must print as the same identifier. It
// never merges across external modules with unrelated names: callers
// only ever union symbols that the linker has already established refer to
// the same binding, so this package enforces nothing extra - it is purely
// a disjoint-set structure.
type UnionFind struct {
	mu   sync.Mutex
	link map[Symbol]Symbol
}

func New() *UnionFind {
	return &UnionFind{link: make(map[Symbol]Symbol)}
}

// find walks the link chain to the current representative, compressing the
// path it walked so future lookups are O(1). Must be called with mu held.
func (uf *UnionFind) find(sym Symbol) Symbol {
	root := sym
	for {
		next, ok := uf.link[root]
		if !ok {
			break
		}
		root = next
	}
	// Path compression: repoint every node visited directly at root.
	for sym != root {
		next := uf.link[sym]
		uf.link[sym] = root
		sym = next
	}
	return root
}

// Find returns the representative Symbol for sym's equivalence class. A
// Symbol that was never unioned is its own representative.
func (uf *UnionFind) Find(sym Symbol) Symbol {
	uf.mu.Lock()
	defer uf.mu.Unlock()
	return uf.find(sym)
}

// Union declares that a and b must ultimately collapse to one identifier.
// Unioning a Symbol with itself is a no-op.
func (uf *UnionFind) Union(a, b Symbol) {
	uf.mu.Lock()
	defer uf.mu.Unlock()
	rootA := uf.find(a)
	rootB := uf.find(b)
	if rootA == rootB {
		return
	}
	uf.link[rootA] = rootB
}

// Same reports whether a and b are currently in the same equivalence class.
func (uf *UnionFind) Same(a, b Symbol) bool {
	uf.mu.Lock()
	defer uf.mu.Unlock()
	return uf.find(a) == uf.find(b)
}
