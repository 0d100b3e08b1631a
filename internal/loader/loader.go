package loader

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/evanw/bundlecore/internal/graph"
	"github.com/evanw/bundlecore/internal/logger"
	"github.com/evanw/bundlecore/internal/moduleid"
)

// BuildError is a single failure collected during a build. Errors are
// batched: one failed module task never cancels the others.
type BuildError struct {
	Kind   logger.ID
	Module string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Module != "" {
		return e.Kind.String() + " (" + e.Module + "): " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error { return e.Err }

// Loader orchestrates the concurrent per-module pipeline: load ->
// transform -> parse/scan -> resolve dependencies -> spawn. It drives
// the plugin host and feeds completed modules into the Graph.
type Loader struct {
	Resolver PathResolver
	Host     PluginHost
	Scanner  Scanner
	FS       FileSystem
	Config   Config
	Log      logger.Log
}

// scanMsg is the "Scanned" message reported upstream over a
// single-producer-per-task channel to the single-consumer driver loop,
// mirroring esbuild's internal/bundler.scanner result channel.
type scanMsg struct {
	id   moduleid.ID
	mod  *graph.NormalModule
	errs []*BuildError
}

// Load expands the graph from entries and returns it once every in-flight
// task has finished, along with any errors collected along the way.
func (l *Loader) Load(ctx context.Context, entries []string) (*graph.Graph, []error) {
	g := graph.New()
	registry := moduleid.NewRegistry()
	resultCh := make(chan scanMsg)
	var errs []error
	var errMu sync.Mutex
	addErr := func(e error) {
		errMu.Lock()
		defer errMu.Unlock()
		errs = append(errs, e)
	}

	inFlight := 0
	var entryIDs []moduleid.ID

	spawn := func(id moduleid.ID, isEntry bool) {
		inFlight++
		go func() {
			resultCh <- l.runTask(ctx, id, isEntry)
		}()
	}

	for _, specifier := range entries {
		resolvedPath, err := l.resolveEntry(ctx, specifier)
		if err != nil {
			addErr(&BuildError{Kind: logger.UnresolvedEntry, Module: specifier, Err: err})
			continue
		}
		id := moduleid.ID{Path: resolvedPath}
		entryIDs = append(entryIDs, id)
		if registry.Claim(id) {
			spawn(id, true)
		}
	}

	for inFlight > 0 {
		msg := <-resultCh
		inFlight--
		for _, e := range msg.errs {
			addErr(e)
		}
		if msg.mod == nil {
			continue
		}
		g.AddNormalModule(msg.mod)

		depIDs := append(append([]moduleid.ID(nil), msg.mod.StaticDepOrder...), msg.mod.DynamicDepOrder...)
		for _, depID := range depIDs {
			if depID.External {
				g.GetOrCreateExternal(depID)
				continue
			}
			if registry.Claim(depID) {
				spawn(depID, false)
			}
		}
	}

	g.SetEntries(entryIDs)
	return g, errs
}

// resolveEntry resolves an entry specifier. Entries have no importer, so a
// resolver failure here is always a hard UnresolvedEntry error - an
// entry can never silently become external.
func (l *Loader) resolveEntry(ctx context.Context, specifier string) (string, error) {
	if path, _, ok := l.Host.Resolve(ctx, "", specifier); ok {
		return path, nil
	}
	path, err := l.Resolver.Resolve(ctx, "", specifier)
	if err != nil {
		return "", errors.Wrap(err, "resolving entry")
	}
	return path, nil
}

func (l *Loader) runTask(ctx context.Context, id moduleid.ID, isEntry bool) scanMsg {
	content, kind, err := l.loadContent(ctx, id.Path)
	if err != nil {
		return scanMsg{id: id, errs: []*BuildError{{Kind: logger.IoError, Module: id.Path, Err: err}}}
	}

	content, kind = l.transform(ctx, id.Path, content, kind)

	scan, err := l.Scanner.Scan(ctx, id.Path, content, kind)
	if err != nil {
		return scanMsg{id: id, errs: []*BuildError{{Kind: logger.ParseFailed, Module: id.Path, Err: err}}}
	}

	mod := graph.NewNormalModule(id, scan)
	mod.IsUserDefinedEntry = isEntry

	resolved, errs := l.resolveDependencies(ctx, id.Path, scan)

	for specifier, imports := range scan.Imports {
		depID := resolved[specifier]
		set := make(map[graph.ImportedSpecifier]struct{}, len(imports))
		for _, imp := range imports {
			set[imp] = struct{}{}
		}
		mod.Imports[depID] = set
	}
	for specifier, reExports := range scan.ReExportedIDs {
		depID := resolved[specifier]
		set := make(map[graph.ExportedSpecifier]struct{}, len(reExports))
		for _, re := range reExports {
			set[re] = struct{}{}
		}
		mod.ReExportedIDs[depID] = set
	}
	for _, specifier := range scan.ReExportAll {
		depID := resolved[specifier]
		if depID.External {
			mod.ExternalModulesOfReExportAll[depID] = struct{}{}
		} else {
			mod.ReExportAll[depID] = struct{}{}
		}
	}
	for name, sym := range scan.LocalExports {
		mod.LinkedExports[name] = graph.ExportedSpecifier{ExportedAs: name, LocalID: sym, Owner: id}
	}

	for _, specifier := range scan.StaticDependencies {
		mod.StaticDepOrder = append(mod.StaticDepOrder, resolved[specifier])
	}
	for _, specifier := range scan.DynamicDependencies {
		mod.DynamicDepOrder = append(mod.DynamicDepOrder, resolved[specifier])
	}

	return scanMsg{id: id, mod: mod, errs: errs}
}

func (l *Loader) loadContent(ctx context.Context, path string) (string, FileKind, error) {
	if res, ok := l.Host.Load(ctx, path); ok {
		kind := res.Kind
		if kind == 0 && !l.Config.Builtins.DetectLoaderByExt {
			kind = Js
		} else if kind == 0 {
			kind = detectLoaderByExt(path)
		}
		return res.Contents, kind, nil
	}
	contents, err := l.FS.ReadFile(path)
	if err != nil {
		return "", Js, err
	}
	kind := Js
	if l.Config.Builtins.DetectLoaderByExt {
		kind = detectLoaderByExt(path)
	}
	return contents, kind, nil
}

func detectLoaderByExt(path string) FileKind {
	switch {
	case strings.HasSuffix(path, ".tsx"):
		return Tsx
	case strings.HasSuffix(path, ".ts"):
		return Ts
	case strings.HasSuffix(path, ".jsx"):
		return Jsx
	case strings.HasSuffix(path, ".json"):
		return Json
	default:
		return Js
	}
}

func (l *Loader) transform(ctx context.Context, path string, contents string, kind FileKind) (string, FileKind) {
	result := TransformResult{Contents: contents, Kind: kind}
	result = l.Host.Transform(ctx, path, result.Contents, result.Kind)
	return result.Contents, result.Kind
}

// resolveDependencies resolves every dependency specifier of a scan
// concurrently, applying the three-way external-bit rule: a user
// predicate, a plugin-returned external flag, or the resolver's
// inability to find the module.
func (l *Loader) resolveDependencies(ctx context.Context, importerPath string, scan graph.Scan) (map[string]moduleid.ID, []*BuildError) {
	specifiers := dedupedSpecifiers(scan)

	var sem *semaphore.Weighted
	if l.Config.MaxConcurrentResolves > 0 {
		sem = semaphore.NewWeighted(l.Config.MaxConcurrentResolves)
	}

	results := make([]moduleid.ID, len(specifiers))
	buildErrs := make([]*BuildError, len(specifiers))
	var wg sync.WaitGroup
	wg.Add(len(specifiers))

	for i, specifier := range specifiers {
		i, specifier := i, specifier
		go func() {
			defer wg.Done()
			if sem != nil {
				_ = sem.Acquire(ctx, 1)
				defer sem.Release(1)
			}
			id, err := l.resolveOne(ctx, importerPath, specifier)
			if err != nil {
				buildErrs[i] = &BuildError{Kind: logger.UnresolvedImport, Module: importerPath, Err: errors.Wrapf(err, "resolving %q", specifier)}
				return
			}
			results[i] = id
		}()
	}
	wg.Wait()

	out := make(map[string]moduleid.ID, len(specifiers))
	var errs []*BuildError
	for i, specifier := range specifiers {
		out[specifier] = results[i]
		if buildErrs[i] != nil {
			errs = append(errs, buildErrs[i])
		}
	}
	return out, errs
}

func dedupedSpecifiers(scan graph.Scan) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range scan.StaticDependencies {
		add(s)
	}
	for _, s := range scan.DynamicDependencies {
		add(s)
	}
	for s := range scan.Imports {
		add(s)
	}
	for s := range scan.ReExportedIDs {
		add(s)
	}
	for _, s := range scan.ReExportAll {
		add(s)
	}
	sort.Strings(out)
	return out
}

// resolveOne resolves a single dependency specifier and decides its
// external bit. A resolver failure here never aborts the build: it marks
// the dependency external, matching rolldown's own module_task.rs
// resolve_id (a missing resolution is treated as a third-party dependency,
// not a hard error).
func (l *Loader) resolveOne(ctx context.Context, importerPath string, specifier string) (moduleid.ID, error) {
	if l.Config.IsExternal != nil && l.Config.IsExternal(specifier, importerPath, false) {
		return moduleid.ID{Path: specifier, External: true}, nil
	}

	importerDir := dirOf(importerPath)

	if path, external, ok := l.Host.Resolve(ctx, importerDir, specifier); ok {
		if external {
			return moduleid.ID{Path: specifier, External: true}, nil
		}
		if l.Config.IsExternal != nil && l.Config.IsExternal(path, importerPath, true) {
			return moduleid.ID{Path: path, External: true}, nil
		}
		return moduleid.ID{Path: path}, nil
	}

	resolvedPath, err := l.Resolver.Resolve(ctx, importerDir, specifier)
	if err != nil {
		return moduleid.ID{Path: specifier, External: true}, nil
	}
	if l.Config.IsExternal != nil && l.Config.IsExternal(resolvedPath, importerPath, true) {
		return moduleid.ID{Path: resolvedPath, External: true}, nil
	}
	return moduleid.ID{Path: resolvedPath}, nil
}

func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
