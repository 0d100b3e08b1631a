// Package pluginhost is a reference implementation of the plugin host
// collaborator: three hooks (load, resolve, transform), the first two
// first-Some-wins, the third applied in sequence. It is guarded by a
// read-mostly lock: each hook call holds the lock only for the duration
// of fetching the registered hook list, then releases it before running
// user code, matching the discipline rolldown's own
// build_plugin_driver.rs uses around its hook registry.
package pluginhost

import (
	"context"
	"sync"

	"github.com/evanw/bundlecore/internal/loader"
)

type LoadHook func(ctx context.Context, id string) (*loader.LoadResult, bool)
type ResolveHook func(ctx context.Context, importerDir, specifier string) (string, bool, bool)
type TransformHook func(ctx context.Context, id, contents string, kind loader.FileKind) loader.TransformResult

// Host is an ordered, in-memory hook registry implementing
// loader.PluginHost.
type Host struct {
	mu         sync.RWMutex
	loaders    []LoadHook
	resolvers  []ResolveHook
	transforms []TransformHook
}

func New() *Host {
	return &Host{}
}

func (h *Host) AddLoad(hook LoadHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaders = append(h.loaders, hook)
}

func (h *Host) AddResolve(hook ResolveHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resolvers = append(h.resolvers, hook)
}

func (h *Host) AddTransform(hook TransformHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.transforms = append(h.transforms, hook)
}

// Load runs each registered load hook in order; the first that claims the
// module (ok == true) wins.
func (h *Host) Load(ctx context.Context, id string) (*loader.LoadResult, bool) {
	h.mu.RLock()
	hooks := append([]LoadHook(nil), h.loaders...)
	h.mu.RUnlock()

	for _, hook := range hooks {
		if res, ok := hook(ctx, id); ok {
			return res, true
		}
	}
	return nil, false
}

// Resolve runs each registered resolve hook in order; the first that
// claims the specifier wins.
func (h *Host) Resolve(ctx context.Context, importerDir, specifier string) (string, bool, bool) {
	h.mu.RLock()
	hooks := append([]ResolveHook(nil), h.resolvers...)
	h.mu.RUnlock()

	for _, hook := range hooks {
		if path, external, ok := hook(ctx, importerDir, specifier); ok {
			return path, external, true
		}
	}
	return "", false, false
}

// Transform runs every registered transform hook in sequence, each
// observing the prior hook's output.
func (h *Host) Transform(ctx context.Context, id, contents string, kind loader.FileKind) loader.TransformResult {
	h.mu.RLock()
	hooks := append([]TransformHook(nil), h.transforms...)
	h.mu.RUnlock()

	result := loader.TransformResult{Contents: contents, Kind: kind}
	for _, hook := range hooks {
		result = hook(ctx, id, result.Contents, result.Kind)
	}
	return result
}
