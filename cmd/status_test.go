package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCmd_Structure(t *testing.T) {
	assert.Equal(t, "status", statusCmd.Name())
	assert.NotNil(t, statusCmd.RunE)
	assert.Error(t, statusCmd.ValidateArgs(nil))
}

func TestStatusCmd_FormatFlag(t *testing.T) {
	f := statusCmd.Flags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "table", f.DefValue)
	assert.Equal(t, "f", f.Shorthand)
}
