package commands

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simal-lang/simal/internal/history"
)

func TestNewHistoryCommandRegistersFlags(t *testing.T) {
	cmd := NewHistoryCommand()
	require.Equal(t, "history", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("limit"))
	assert.NotNil(t, cmd.Flags().Lookup("failed"))
}

func TestRunHistoryPrintsRecordedRuns(t *testing.T) {
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWD) })

	require.NoError(t, os.WriteFile(".simalrc.yaml", []byte("history:\n  driver: sqlite3\n  dsn: history.db\n"), 0644))

	store, err := history.Open("sqlite3", "history.db")
	require.NoError(t, err)
	require.NoError(t, store.Record(history.Run{Timestamp: time.Now(), InputPath: "a.simal", Success: true}))
	require.NoError(t, store.Close())

	historyLimit, historyFailed = 10, false
	cmd := NewHistoryCommand()
	assert.NoError(t, runHistory(cmd, nil))
}

func TestRunHistoryHandlesEmptyStore(t *testing.T) {
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWD) })

	require.NoError(t, os.WriteFile(".simalrc.yaml", []byte("history:\n  driver: sqlite3\n  dsn: empty.db\n"), 0644))

	historyLimit, historyFailed = 10, false
	cmd := NewHistoryCommand()
	assert.NoError(t, runHistory(cmd, nil))
}
