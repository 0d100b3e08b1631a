// Package bundlecore is the public entry point tying the loader, graph,
// and linker together: Build expands a module graph from a set of entry
// specifiers and links it (load -> parse/scan -> resolve -> link).
// Everything downstream of a linked graph - chunking, code generation,
// source maps - is left to the embedder.
package bundlecore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/linker"
	"github.com/evanw/bundlecore/internal/loader"
	"github.com/evanw/bundlecore/internal/logger"
	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/pluginhost"
	"github.com/evanw/bundlecore/internal/resolver"
	"github.com/evanw/bundlecore/internal/scanner"
)

// Config bundles the options an embedder can set. A zero Config is
// usable: it builds against the real filesystem with the reference
// resolver and scanner, no plugins, and unbounded resolve concurrency.
type Config struct {
	Cwd                   string
	PreserveSymlinks      bool
	ShimMissingExports    bool
	IsExternal            loader.IsExternalFunc
	TSConfig              *loader.TSConfig
	DetectLoaderByExt     bool
	MaxConcurrentResolves int64

	// Host, Resolver, FS, and Scanner let an embedder swap in their own
	// collaborators; nil fields fall back to this package's reference
	// implementations.
	Host     loader.PluginHost
	Resolver loader.PathResolver
	FS       loader.FileSystem
	Scanner  loader.Scanner

	// Logger receives every diagnostic collected during the build, sorted
	// by module then kind. A nil Logger discards output.
	Logger logrus.FieldLogger
}

// Output is the linked result of a build plus every diagnostic produced
// along the way. A non-nil error from Build means a fatal condition
// stopped linking early; Msgs still carries whatever warnings were
// collected before that point.
type Output struct {
	Graph      *graph.Graph
	Order      []moduleid.ID
	Namespaces map[moduleid.ID]*linker.Namespace
	Msgs       []logger.Msg
}

// Build runs the full pipeline for one set of entry specifiers.
func Build(ctx context.Context, entries []string, cfg Config) (*Output, []error) {
	log := logger.NewDeferLog(cfg.Logger)

	fs := cfg.FS
	res := cfg.Resolver
	if res == nil {
		res = resolver.NewFSResolver(cfg.PreserveSymlinks)
	}
	host := cfg.Host
	if host == nil {
		host = pluginhost.New()
	}
	scan := cfg.Scanner
	if scan == nil {
		scan = scanner.New()
	}
	if fs == nil && cfg.FS == nil {
		fs = osFileSystem{}
	}

	l := &loader.Loader{
		Resolver: res,
		Host:     host,
		Scanner:  scan,
		FS:       fs,
		Log:      log,
		Config: loader.Config{
			Cwd:                cfg.Cwd,
			PreserveSymlinks:   cfg.PreserveSymlinks,
			ShimMissingExports: cfg.ShimMissingExports,
			IsExternal:         cfg.IsExternal,
			Builtins: loader.Builtins{
				TSConfig:          cfg.TSConfig,
				DetectLoaderByExt: cfg.DetectLoaderByExt,
			},
			MaxConcurrentResolves: cfg.MaxConcurrentResolves,
		},
	}

	g, loadErrs := l.Load(ctx, entries)
	if len(loadErrs) > 0 {
		return &Output{Graph: g, Msgs: log.Done()}, loadErrs
	}

	result, err := linker.Link(g, g.Entries(), linker.Config{ShimMissingExports: cfg.ShimMissingExports}, log)
	if err != nil {
		return &Output{Graph: g, Msgs: log.Done()}, []error{errors.Wrap(err, "linking")}
	}

	return &Output{
		Graph:      result.Graph,
		Order:      result.Order,
		Namespaces: result.Namespaces,
		Msgs:       log.Done(),
	}, nil
}
