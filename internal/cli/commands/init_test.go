package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	cmd := NewInitCommand()
	require.Equal(t, "init [project-name]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestRunInitRejectsInvalidProjectName(t *testing.T) {
	cmd := NewInitCommand()
	err := runInit(cmd, []string{"not a valid name!"})
	assert.Error(t, err)
}

func TestProjectNameRegexAcceptsCommonForms(t *testing.T) {
	assert.True(t, projectNameRe.MatchString("billing"))
	assert.True(t, projectNameRe.MatchString("billing-api_v2"))
	assert.False(t, projectNameRe.MatchString("billing api"))
	assert.False(t, projectNameRe.MatchString("billing!"))
}
