// Package loader expands the module graph from a set of entries, exactly
// once per module id, with each module's load/transform/parse/scan/resolve
// pipeline running concurrently. It is the only package that talks to the
// path resolver, parser/scanner, and plugin host collaborators; once Load
// returns, nothing downstream touches them again.
package loader

import (
	"context"

	"github.com/evanw/bundlecore/internal/graph"
)

// FileKind selects which parser front-end a module's source is run
// through. The core never inspects the AST this produces; it only carries
// the tag through to the downstream code-emission stage.
type FileKind uint8

const (
	Js FileKind = iota
	Jsx
	Ts
	Tsx
	Json
)

func (k FileKind) String() string {
	switch k {
	case Js:
		return "js"
	case Jsx:
		return "jsx"
	case Ts:
		return "ts"
	case Tsx:
		return "tsx"
	case Json:
		return "json"
	default:
		return "unknown"
	}
}

// PathResolver resolves an import specifier relative to its importing
// module's directory: resolve(importer_dir, specifier) -> path|error.
// importerDir is empty for an entry point.
type PathResolver interface {
	Resolve(ctx context.Context, importerDir string, specifier string) (resolvedPath string, err error)
}

// LoadResult is what plugin `load` or the filesystem fallback produces for
// one module.
type LoadResult struct {
	Contents string
	Kind     FileKind // zero value means "unspecified", falls back to extension/default detection
}

// TransformResult is what a `transform` hook returns; a hook may rewrite
// the code, the loader kind, or both.
type TransformResult struct {
	Contents string
	Kind     FileKind
}

// PluginHost exposes three hooks, each returning an optional value. The
// first plugin returning a non-nil result wins for Load and Resolve;
// Transform is applied in sequence.
type PluginHost interface {
	Load(ctx context.Context, id string) (*LoadResult, bool)
	Resolve(ctx context.Context, importerDir string, specifier string) (resolvedPath string, external bool, ok bool)
	Transform(ctx context.Context, id string, contents string, kind FileKind) TransformResult
}

// FileSystem is the fallback used when no plugin `load` hook claims a
// module; kept as its own narrow interface so tests and the reference
// resolver can share one in-memory implementation without dragging in the
// real filesystem.
type FileSystem interface {
	ReadFile(path string) (string, error)
}

// Scanner is the parser/scanner collaborator: given a module's id, source,
// and loader kind, produce an AST plus the dependency/export shape the
// loader and linker need.
type Scanner interface {
	Scan(ctx context.Context, id string, source string, kind FileKind) (graph.Scan, error)
}

// TSConfig carries the handful of TypeScript build-time flags the core
// accepts. The loader keeps them in its Config; Scanner.Scan takes no
// configuration argument, so they are not passed to the scanner.
type TSConfig struct {
	UseDefineForClassFields bool
}

// Builtins groups the built-in front-end options. DetectLoaderByExt is
// read by the loader itself when it picks a FileKind; TSConfig is carried
// in the configuration but not read by the loader.
type Builtins struct {
	TSConfig        *TSConfig
	DetectLoaderByExt bool
}

// IsExternalFunc decides whether a resolved specifier should be treated as
// an external module, independent of what the plugin host or resolver say.
type IsExternalFunc func(specifier string, importer string, alreadyResolved bool) bool

// Config bundles the loader's inputs.
type Config struct {
	Cwd                string
	PreserveSymlinks   bool
	ShimMissingExports bool
	IsExternal         IsExternalFunc
	Builtins           Builtins

	// MaxConcurrentResolves bounds how many plugin `resolve` calls a single
	// module task may have in flight at once. Zero means unbounded.
	MaxConcurrentResolves int64
}
