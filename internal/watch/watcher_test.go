package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileWatcherDetectsSourceFileChange(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.simal")
	require.NoError(t, os.WriteFile(testFile, []byte("system {}"), 0644))

	var mu sync.Mutex
	var batches [][]string

	fw, err := NewFileWatcher(tmpDir, 20*time.Millisecond, nil, zap.NewNop(), func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, files)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	require.NoError(t, os.WriteFile(testFile, []byte("system { type: microservices }"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, time.Second, 10*time.Millisecond)
}

func TestFileWatcherIgnoresNonSourceFiles(t *testing.T) {
	tmpDir := t.TempDir()
	ignoredFile := filepath.Join(tmpDir, "notes.txt")

	var mu sync.Mutex
	var batches [][]string

	fw, err := NewFileWatcher(tmpDir, 20*time.Millisecond, nil, zap.NewNop(), func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, files)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	require.NoError(t, os.WriteFile(ignoredFile, []byte("hello"), 0644))
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, batches)
}

func TestDebouncerCoalescesRapidAdds(t *testing.T) {
	var mu sync.Mutex
	var got []string

	d := NewDebouncer(20 * time.Millisecond)
	d.SetCallback(func(files []string) {
		mu.Lock()
		defer mu.Unlock()
		got = files
	})

	d.Add("a.simal")
	d.Add("b.simal")
	d.Add("a.simal")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)
}
