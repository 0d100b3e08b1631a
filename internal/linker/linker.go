// Package linker runs on a finished graph. It threads re-exports and
// imports through the graph, unifies symbol identities across module
// boundaries, and patches namespace exports. Linking runs single-threaded
// and in execution order: the exports pass depends on predecessors'
// linked_exports being finalized, and the imports pass depends on the
// exports pass having already finished.
package linker

import (
	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/logger"
	"github.com/evanw/bundlecore/internal/moduleid"
)

// Config mirrors the handful of Configuration fields the linker itself
// consults.
type Config struct {
	ShimMissingExports bool
}

// Result is what Link hands back to the public API: the fully linked
// graph plus the namespace objects the patch pass materialized.
type Result struct {
	Graph      *graph.Graph
	Order      []moduleid.ID
	Namespaces map[moduleid.ID]*Namespace
}

// Link orders the graph, runs the exports pass then the imports pass in
// that order, and finally patches namespace exports in parallel. It
// returns at the first fatal error; warnings go through log and
// never abort the build.
func Link(g *graph.Graph, entries []moduleid.ID, cfg Config, log logger.Log) (*Result, error) {
	order := g.Order(entries)

	if err := linkExports(g, order, cfg, log); err != nil {
		return nil, err
	}
	if err := linkImports(g, order, cfg, log); err != nil {
		return nil, err
	}

	namespaces := patch(g, order)

	return &Result{Graph: g, Order: order, Namespaces: namespaces}, nil
}
