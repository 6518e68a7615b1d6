package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simal-lang/simal/internal/compiler/cache"
)

func newTestRecompiler(t *testing.T) *Recompiler {
	t.Helper()
	c, err := cache.New(8, "")
	require.NoError(t, err)
	return &Recompiler{Cache: c, Logger: zap.NewNop()}
}

func TestRecompileValidFileSucceeds(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a.simal")
	require.NoError(t, os.WriteFile(path, []byte("system { type: microservices }"), 0644))

	r := newTestRecompiler(t)
	results := r.Recompile([]string{path})
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	value, ok := results[0].Simple.Get("type")
	require.True(t, ok)
	assert.Equal(t, "microservices", value)
}

func TestRecompileParseErrorReported(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.simal")
	require.NoError(t, os.WriteFile(path, []byte("system { type: a"), 0644))

	r := newTestRecompiler(t)
	results := r.Recompile([]string{path})
	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.NotEmpty(t, results[0].Errors)
}

func TestRecompileUsesCacheOnSecondPass(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a.simal")
	require.NoError(t, os.WriteFile(path, []byte("system { type: microservices }"), 0644))

	r := newTestRecompiler(t)
	first := r.Recompile([]string{path})
	require.True(t, first[0].OK)
	assert.Equal(t, 1, r.Cache.Len())

	second := r.Recompile([]string{path})
	require.True(t, second[0].OK)
	firstType, _ := first[0].Simple.Get("type")
	secondType, _ := second[0].Simple.Get("type")
	assert.Equal(t, firstType, secondType)
}

func TestRecompileMissingFileReportsError(t *testing.T) {
	r := newTestRecompiler(t)
	results := r.Recompile([]string{"/does/not/exist.simal"})
	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
}
