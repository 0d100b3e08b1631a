// Package resolver is a reference implementation of the path resolver
// collaborator: resolve(importer_dir, specifier) -> path|error. It is
// deliberately simple - relative-specifier resolution with a fixed
// extension probe order, no node_modules algorithm - since the real path
// resolver is out of this module's scope; it exists so the loader and
// linker are runnable end-to-end against real or in-memory files.
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// extensionProbeOrder is the order a specifier is probed in: as written,
// then with each extension in turn, then as a directory index file.
var extensionProbeOrder = []string{"", ".ts", ".tsx", ".js", ".jsx", ".json"}

// Exists abstracts "is there a file at this path", so the same probing
// logic works against the real filesystem or an in-memory fixture.
type Exists func(path string) bool

// Resolver is the reference PathResolver. Symlink following is a policy
// bit: symlinks are followed or preserved according to PreserveSymlinks.
type Resolver struct {
	Exists           Exists
	EvalSymlinks     func(path string) (string, error)
	PreserveSymlinks bool
}

// NewFSResolver builds a Resolver backed by the real filesystem.
func NewFSResolver(preserveSymlinks bool) *Resolver {
	return &Resolver{
		Exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		EvalSymlinks:     filepath.EvalSymlinks,
		PreserveSymlinks: preserveSymlinks,
	}
}

// NewMapResolver builds a Resolver backed by an in-memory set of paths,
// for tests.
func NewMapResolver(files map[string]string) *Resolver {
	return &Resolver{
		Exists: func(path string) bool {
			_, ok := files[path]
			return ok
		},
		PreserveSymlinks: true,
	}
}

// Resolve implements loader.PathResolver. Only relative specifiers
// ("./x", "../x") are handled; a bare specifier with no importer directory
// (an entry point) is resolved relative to cwd by the caller having
// already made it relative, and a bare specifier with an importer is left
// unresolved so the loader's external-bit rule takes over.
func (r *Resolver) Resolve(ctx context.Context, importerDir string, specifier string) (string, error) {
	var joined string
	switch {
	case importerDir == "":
		// No importer means this is an entry point: entries are
		// filesystem paths by construction, not bare module specifiers, so
		// there is no "is this relative" question to ask.
		joined = filepath.ToSlash(filepath.Clean(specifier))
	case isRelative(specifier):
		joined = filepath.ToSlash(filepath.Join(importerDir, specifier))
	default:
		return "", errors.Errorf("cannot resolve bare specifier %q without a module resolution algorithm", specifier)
	}

	resolved, err := r.probe(joined)
	if err != nil {
		return "", err
	}

	if !r.PreserveSymlinks && r.EvalSymlinks != nil {
		if real, err := r.EvalSymlinks(resolved); err == nil {
			resolved = filepath.ToSlash(real)
		}
	}
	return resolved, nil
}

func (r *Resolver) probe(path string) (string, error) {
	for _, ext := range extensionProbeOrder {
		candidate := path + ext
		if r.Exists(candidate) {
			return candidate, nil
		}
	}
	for _, ext := range extensionProbeOrder[1:] {
		candidate := path + "/index" + ext
		if r.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", errors.Errorf("could not resolve %q", path)
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || specifier == "." || specifier == ".."
}

// GlobIsExternal builds a loader.IsExternalFunc from a list of
// doublestar glob patterns, e.g.
// []string{"**/*.node", "fsevents"}. Grounded on bennypowers-cem's use of
// doublestar/v4 for the same kind of ignore/allow glob matching.
func GlobIsExternal(patterns []string) func(specifier, importer string, alreadyResolved bool) bool {
	return func(specifier, importer string, alreadyResolved bool) bool {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, specifier); ok {
				return true
			}
		}
		return false
	}
}
