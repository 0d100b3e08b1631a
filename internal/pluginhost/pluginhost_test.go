package pluginhost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evanw/bundlecore/internal/loader"
	"github.com/evanw/bundlecore/internal/pluginhost"
)

func TestLoadFirstHookClaimingWins(t *testing.T) {
	h := pluginhost.New()
	h.AddLoad(func(ctx context.Context, id string) (*loader.LoadResult, bool) {
		return nil, false
	})
	h.AddLoad(func(ctx context.Context, id string) (*loader.LoadResult, bool) {
		return &loader.LoadResult{Contents: "export const a = 1", Kind: loader.Js}, true
	})
	h.AddLoad(func(ctx context.Context, id string) (*loader.LoadResult, bool) {
		t.Fatal("should not be reached once a prior hook claimed the module")
		return nil, false
	})

	res, ok := h.Load(context.Background(), "m.js")
	assert.True(t, ok)
	assert.Equal(t, "export const a = 1", res.Contents)
}

func TestLoadNoHookClaims(t *testing.T) {
	h := pluginhost.New()
	h.AddLoad(func(ctx context.Context, id string) (*loader.LoadResult, bool) {
		return nil, false
	})

	_, ok := h.Load(context.Background(), "m.js")
	assert.False(t, ok)
}

func TestResolveFirstHookClaimingWins(t *testing.T) {
	h := pluginhost.New()
	h.AddResolve(func(ctx context.Context, importerDir, specifier string) (string, bool, bool) {
		return "", false, false
	})
	h.AddResolve(func(ctx context.Context, importerDir, specifier string) (string, bool, bool) {
		if specifier == "virtual:thing" {
			return "virtual:thing", false, true
		}
		return "", false, false
	})

	path, external, ok := h.Resolve(context.Background(), "", "virtual:thing")
	assert.True(t, ok)
	assert.False(t, external)
	assert.Equal(t, "virtual:thing", path)
}

func TestTransformAppliesHooksInSequence(t *testing.T) {
	h := pluginhost.New()
	h.AddTransform(func(ctx context.Context, id, contents string, kind loader.FileKind) loader.TransformResult {
		return loader.TransformResult{Contents: contents + "_first", Kind: kind}
	})
	h.AddTransform(func(ctx context.Context, id, contents string, kind loader.FileKind) loader.TransformResult {
		return loader.TransformResult{Contents: contents + "_second", Kind: loader.Ts}
	})

	result := h.Transform(context.Background(), "m.js", "src", loader.Js)
	assert.Equal(t, "src_first_second", result.Contents)
	assert.Equal(t, loader.Ts, result.Kind)
}

func TestTransformWithNoHooksIsIdentity(t *testing.T) {
	h := pluginhost.New()
	result := h.Transform(context.Background(), "m.js", "src", loader.Js)
	assert.Equal(t, "src", result.Contents)
	assert.Equal(t, loader.Js, result.Kind)
}
