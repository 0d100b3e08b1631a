package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferLogSortsByModuleThenKind(t *testing.T) {
	sink, hook := test.NewNullLogger()
	sink.SetLevel(logrus.DebugLevel)
	log := NewDeferLog(sink)

	AddWarning(log, "b.js", ShimmedExport, "ghost shimmed")
	require.False(t, log.HasErrors())
	AddError(log, "a.js", MissingExport, "x not found")
	AddWarning(log, "a.js", AmbiguousExternalNamespaces, "ambiguous candidates")

	AddError(log, "a.js", MissingExport, "second error")
	require.True(t, log.HasErrors())

	msgs := log.Done()
	require.Len(t, msgs, 4)
	assert.Equal(t, "a.js", msgs[0].Module)
	assert.Equal(t, Error, msgs[0].Kind)
	assert.Equal(t, "a.js", msgs[2].Module)
	assert.Equal(t, Warning, msgs[2].Kind)
	assert.Equal(t, "b.js", msgs[3].Module)

	require.Len(t, hook.AllEntries(), 4)
}
