// Package helm wraps the helm binary for chart repository management and
// idempotent upgrade-or-install operations
package helm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/pkg/config"
)

// Client invokes helm against one kubeconfig
type Client struct {
	exec       cmdexec.Runner
	kubeconfig string
}

// New creates a Client. kubeconfig may be empty to use helm's defaults.
func New(exec cmdexec.Runner, kubeconfig string) *Client {
	return &Client{exec: exec, kubeconfig: kubeconfig}
}

func (c *Client) kubeArgs() []string {
	if c.kubeconfig == "" {
		return nil
	}
	return []string{"--kubeconfig", c.kubeconfig}
}

// RepoAdd registers a chart repository, overwriting any stale entry
func (c *Client) RepoAdd(ctx context.Context, name, url string) error {
	return c.exec.Run(ctx, cmdexec.Command{
		Name:        "helm",
		Args:        []string{"repo", "add", name, url, "--force-update"},
		Description: fmt.Sprintf("Adding helm repo %s", name),
	})
}

// RepoUpdate refreshes all registered chart repositories
func (c *Client) RepoUpdate(ctx context.Context) error {
	return c.exec.Run(ctx, cmdexec.Command{
		Name:        "helm",
		Args:        []string{"repo", "update"},
		Description: "Updating helm repositories",
	})
}

// UpgradeInstall performs an idempotent upgrade-or-install of one chart,
// blocking until the release reports ready. Inline values are rendered to a
// temporary values file.
func (c *Client) UpgradeInstall(ctx context.Context, chart config.ChartConfig) error {
	args := []string{"upgrade", "--install", chart.Release, chart.Chart,
		"--namespace", chart.Namespace,
		"--create-namespace",
		"--wait",
	}
	if chart.Timeout != "" {
		args = append(args, "--timeout", chart.Timeout)
	}
	if chart.ValuesFile != "" {
		args = append(args, "-f", chart.ValuesFile)
	}
	if len(chart.Values) > 0 {
		valuesFile, err := writeValuesFile(chart.Release, chart.Values)
		if err != nil {
			return err
		}
		defer os.Remove(valuesFile)
		args = append(args, "-f", valuesFile)
	}
	args = append(args, c.kubeArgs()...)

	return c.exec.Run(ctx, cmdexec.Command{
		Name:        "helm",
		Args:        args,
		Description: fmt.Sprintf("Installing %s", chart.Release),
	})
}

func writeValuesFile(release string, values map[string]any) (string, error) {
	data, err := yaml.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal values for %s: %w", release, err)
	}
	f, err := os.CreateTemp("", "values-"+release+"-*.yaml")
	if err != nil {
		return "", fmt.Errorf("failed to create values file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write values file: %w", err)
	}
	return f.Name(), nil
}

// ReleaseInfo is one row of helm list -o json
type ReleaseInfo struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Revision   string `json:"revision"`
	Status     string `json:"status"`
	Chart      string `json:"chart"`
	AppVersion string `json:"app_version"`
}

// List returns all releases across namespaces
func (c *Client) List(ctx context.Context) ([]ReleaseInfo, error) {
	args := append([]string{"list", "-A", "-o", "json"}, c.kubeArgs()...)
	out, err := c.exec.Output(ctx, cmdexec.Command{
		Name:        "helm",
		Args:        args,
		Description: "Listing helm releases",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list helm releases: %w", err)
	}
	var releases []ReleaseInfo
	if err := json.Unmarshal(out, &releases); err != nil {
		return nil, fmt.Errorf("failed to parse helm release list: %w", err)
	}
	return releases, nil
}
