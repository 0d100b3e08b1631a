// Package moduleid defines the graph's key type: an opaque, comparable,
// hashable reference to a module, either a resolved filesystem path or a
// bare external specifier.
package moduleid

import "sync"

// ID is a module id: (path_or_specifier, external). It is a plain
// comparable struct, so it works directly as a map key; External modules
// carry their bare specifier in Path rather than a resolved filesystem
// path.
type ID struct {
	Path     string
	External bool
}

func (id ID) String() string {
	if id.External {
		return "external:" + id.Path
	}
	return id.Path
}

// Registry dedups module ids as the loader discovers them. It backs the
// "visited" set: many modules may depend on the same id, and only the
// first Claim for it should spawn a new task.
//
// The loader calls Claim from its single driver goroutine. The set is a
// sync.Map, so Claim is also safe to call from several goroutines at once.
type Registry struct {
	claimed sync.Map // ID -> struct{}
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Claim returns true the first time it is called for a given id, and false
// on every subsequent call. Callers spawn a module task only when Claim
// returns true.
func (r *Registry) Claim(id ID) bool {
	_, alreadyClaimed := r.claimed.LoadOrStore(id, struct{}{})
	return !alreadyClaimed
}
