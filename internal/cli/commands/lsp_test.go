package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLSPCommand(t *testing.T) {
	cmd := NewLSPCommand()
	require.Equal(t, "lsp", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("verbose"))
	assert.NotNil(t, cmd.RunE)
}
