package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSourceFilesRecursesAndFilters(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "billing.simal"), []byte("system {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not source"), 0644))

	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "orders.siml"), []byte("system {}"), 0644))

	files, err := FindSourceFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, f := range files {
		ext := filepath.Ext(f)
		assert.True(t, ext == ".simal" || ext == ".siml")
	}
}

func TestFindSourceFilesEmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := FindSourceFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}
