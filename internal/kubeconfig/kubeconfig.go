// Package kubeconfig fetches EKS cluster credentials into a per-environment
// kubeconfig file
package kubeconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/internal/terraform"
)

// Configurer writes cluster credentials via aws eks update-kubeconfig
type Configurer struct {
	exec cmdexec.Runner

	// homeDir is swapped in tests
	homeDir func() (string, error)
}

// New creates a Configurer
func New(exec cmdexec.Runner) *Configurer {
	return &Configurer{
		exec:    exec,
		homeDir: os.UserHomeDir,
	}
}

// Path returns the kubeconfig location for an environment
func (c *Configurer) Path(environment string) (string, error) {
	home, err := c.homeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".kube", "sloth-secrets", environment+".yaml"), nil
}

// Configure reads the cluster name from Terraform outputs and fetches its
// credential bundle. When the cluster output is absent the EKS feature is
// disabled for this environment: a warning is printed and no error returned.
// Returns the kubeconfig path, or "" when skipped.
func (c *Configurer) Configure(ctx context.Context, environment string, outputs terraform.Outputs, defaultRegion string) (string, error) {
	clusterName, ok := outputs.String("cluster_name")
	if !ok {
		color.Yellow("cluster_name output not found; skipping kubectl configuration")
		return "", nil
	}

	region := outputs.StringOr("region", defaultRegion)

	path, err := c.Path(environment)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create kubeconfig directory: %w", err)
	}

	err = c.exec.Run(ctx, cmdexec.Command{
		Name: "aws",
		Args: []string{
			"eks", "update-kubeconfig",
			"--name", clusterName,
			"--region", region,
			"--kubeconfig", path,
		},
		Description: fmt.Sprintf("Fetching credentials for cluster %s", clusterName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to update kubeconfig for cluster %s: %w", clusterName, err)
	}
	return path, nil
}
