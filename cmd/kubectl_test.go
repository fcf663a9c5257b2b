package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKubectlCmd_Structure(t *testing.T) {
	assert.Equal(t, "kubectl", kubectlCmd.Name())
	assert.True(t, kubectlCmd.DisableFlagParsing, "kubectl args must pass through unparsed")
	assert.Contains(t, kubectlCmd.Example, "get nodes")
}

func TestRunKubectl_RequiresEnvironment(t *testing.T) {
	err := runKubectl(kubectlCmd, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "environment is required")

	err = runKubectl(kubectlCmd, []string{"--help"})
	assert.Error(t, err, "a leading flag should not be mistaken for an environment")

	err = runKubectl(kubectlCmd, []string{""})
	assert.Error(t, err, "an empty argument should not be mistaken for an environment")
	assert.Contains(t, err.Error(), "environment is required")
}

func TestRunHelm_RequiresEnvironment(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}, {""}} {
		err := runHelm(helmCmd, args)
		assert.Error(t, err, "args %q should be rejected before helm runs", args)
		assert.Contains(t, err.Error(), "environment is required")
	}
}

func TestHelmCmd_Structure(t *testing.T) {
	assert.Equal(t, "helm", helmCmd.Name())
	assert.True(t, helmCmd.DisableFlagParsing)
	assert.Contains(t, helmCmd.Example, "list")
}
