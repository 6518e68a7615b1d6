package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatchCommandRequiresOneArg(t *testing.T) {
	cmd := NewWatchCommand()
	require.Equal(t, "watch <dir>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("verbose"))
	assert.Error(t, cmd.Args(cmd, []string{}))
	assert.NoError(t, cmd.Args(cmd, []string{"./app"}))
}

func TestRunWatchRejectsMissingDirectory(t *testing.T) {
	cmd := NewWatchCommand()
	err := runWatch(cmd, []string{"/path/does/not/exist"})
	assert.Error(t, err)
}
