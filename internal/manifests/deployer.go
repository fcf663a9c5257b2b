package manifests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/pkg/retry"
)

// Deployer templates every manifest under a scenario tree and applies the
// result with kubectl. Scenario directories are applied in lexical order.
type Deployer struct {
	exec       cmdexec.Runner
	kubeconfig string
	retryCfg   retry.Config
}

// NewDeployer creates a Deployer. Applies are retried with backoff because
// IAM role bindings referenced by the manifests can lag behind the apply
// (AWS IAM is eventually consistent).
func NewDeployer(exec cmdexec.Runner, kubeconfig string) *Deployer {
	cfg := retry.ApplyConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		color.Yellow("apply attempt %d failed (%v), retrying in %s", attempt, err, delay.Round(time.Second))
	}
	return &Deployer{
		exec:       exec,
		kubeconfig: kubeconfig,
		retryCfg:   cfg,
	}
}

// Scenarios lists the scenario directories under root in lexical order
func Scenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// manifestFiles lists the YAML manifests in one scenario directory
func manifestFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// DeployAll templates and applies every scenario under root
func (d *Deployer) DeployAll(ctx context.Context, root string, vars map[string]string) error {
	scenarios, err := Scenarios(root)
	if err != nil {
		return err
	}
	for _, scenario := range scenarios {
		color.Cyan("Applying scenario %s", filepath.Base(scenario))
		if err := d.DeployScenario(ctx, scenario, vars); err != nil {
			return fmt.Errorf("scenario %s: %w", filepath.Base(scenario), err)
		}
	}
	return nil
}

// DeployScenario templates and applies the manifests of one scenario
func (d *Deployer) DeployScenario(ctx context.Context, dir string, vars map[string]string) error {
	files, err := manifestFiles(dir)
	if err != nil {
		return err
	}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read manifest %s: %w", file, err)
		}
		rendered := Expand(string(raw), vars)
		if err := d.apply(ctx, filepath.Base(file), rendered); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deployer) apply(ctx context.Context, name, manifest string) error {
	args := []string{"apply", "-f", "-"}
	if d.kubeconfig != "" {
		args = append(args, "--kubeconfig", d.kubeconfig)
	}
	return retry.New(d.retryCfg).DoWithContext(ctx, func() error {
		return d.exec.Run(ctx, cmdexec.Command{
			Name:        "kubectl",
			Args:        args,
			Stdin:       strings.NewReader(manifest),
			Description: fmt.Sprintf("Applying %s", name),
		})
	})
}
