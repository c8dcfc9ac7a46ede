package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_runCmd(t *testing.T) {
	cmd := runCmd()

	require.NotNil(t, cmd.Flags().Lookup("version"))
	require.NotNil(t, cmd.Flags().Lookup("direction"))

	assert.Contains(t, cmd.Long, "--direction up applies every pending migration")
	assert.Contains(t, cmd.Long, "--direction down reverts the current one")
	assert.NotContains(t, cmd.Long, "one step")
}
