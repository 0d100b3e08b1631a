package linker

import (
	"sync"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/moduleid"
)

// Namespace is the materialized object a patched module exposes when some
// consumer takes `import * as ns` of it, or it is reached as a wildcard
// re-export source. The downstream code-emission stage this module
// does not contain is responsible for turning this into real AST; here it
// is just the linked_exports snapshot the patch needs to have captured.
type Namespace struct {
	Exports map[string]graph.ExportedSpecifier
}

// patch runs after linking. Each goroutine only ever reads and writes
// its own module's state, so - unlike the single-threaded linking passes -
// this can run in parallel across the whole module set.
func patch(g *graph.Graph, order []moduleid.ID) map[moduleid.ID]*Namespace {
	namespaces := make(map[moduleid.ID]*Namespace)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range order {
		m, ok := g.Normal(id)
		if !ok || !m.NamespaceReferenced {
			continue
		}
		wg.Add(1)
		go func(id moduleid.ID, m *graph.NormalModule) {
			defer wg.Done()
			ns := &Namespace{Exports: make(map[string]graph.ExportedSpecifier, len(m.LinkedExports))}
			for name, spec := range m.LinkedExports {
				ns.Exports[name] = spec
			}
			mu.Lock()
			namespaces[id] = ns
			mu.Unlock()
		}(id, m)
	}

	wg.Wait()
	return namespaces
}
