package bundlecore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanw/bundlecore/internal/moduleid"
	"github.com/evanw/bundlecore/internal/pluginhost"
	"github.com/evanw/bundlecore/internal/resolver"
	"github.com/evanw/bundlecore/internal/scanner"
	"github.com/evanw/bundlecore/pkg/bundlecore"
)

type mapFS map[string]string

func (fs mapFS) ReadFile(path string) (string, error) {
	contents, ok := fs[path]
	if !ok {
		return "", assert.AnError
	}
	return contents, nil
}

func TestBuildLinksSimpleChain(t *testing.T) {
	files := mapFS{
		"entry.js": `import { a } from "./m.js"
console.log(a)
`,
		"m.js": `export const a = 1
`,
	}

	cfg := bundlecore.Config{
		Resolver: resolver.NewMapResolver(files),
		Host:     pluginhost.New(),
		Scanner:  scanner.New(),
		FS:       files,
	}

	out, errs := bundlecore.Build(context.Background(), []string{"entry.js"}, cfg)
	require.Empty(t, errs)
	require.NotNil(t, out)

	entry, ok := out.Graph.Normal(moduleid.ID{Path: "entry.js"})
	require.True(t, ok)
	m, ok := out.Graph.Normal(moduleid.ID{Path: "m.js"})
	require.True(t, ok)

	imports := entry.LinkedImports[m.ID]
	require.NotEmpty(t, imports)
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	files := mapFS{
		"entry.js": `export * from "./a.js"
export * from "./b.js"
`,
		"a.js": `export const x = 1
`,
		"b.js": `export const y = 2
`,
	}

	run := func() []moduleid.ID {
		cfg := bundlecore.Config{
			Resolver: resolver.NewMapResolver(files),
			Host:     pluginhost.New(),
			Scanner:  scanner.New(),
			FS:       files,
		}
		out, errs := bundlecore.Build(context.Background(), []string{"entry.js"}, cfg)
		require.Empty(t, errs)
		return out.Order
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestBuildReportsUnresolvedEntryAsError(t *testing.T) {
	files := mapFS{}
	cfg := bundlecore.Config{
		Resolver: resolver.NewMapResolver(files),
		Host:     pluginhost.New(),
		Scanner:  scanner.New(),
		FS:       files,
	}

	_, errs := bundlecore.Build(context.Background(), []string{"./missing.js"}, cfg)
	require.Len(t, errs, 1)
}
