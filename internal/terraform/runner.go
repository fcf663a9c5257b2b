// Package terraform wraps the terraform binary for one environment
package terraform

import (
	"context"
	"fmt"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/pkg/config"
)

// Runner invokes terraform in a fixed working directory with the
// environment-selected variable and backend files
type Runner struct {
	exec cmdexec.Runner
	dir  string
	cfg  config.TerraformConfig
}

// New creates a Runner for the given environment's Terraform configuration
func New(exec cmdexec.Runner, cfg config.TerraformConfig) *Runner {
	return &Runner{
		exec: exec,
		dir:  cfg.Dir,
		cfg:  cfg,
	}
}

// Init runs terraform init, pointing at the environment backend config when
// an S3 backend is configured
func (r *Runner) Init(ctx context.Context) error {
	args := []string{"init"}
	if r.cfg.Backend == "s3" && r.cfg.BackendFile != "" {
		args = append(args, "-backend-config="+r.cfg.BackendFile)
	}
	return r.exec.Run(ctx, cmdexec.Command{
		Name:        "terraform",
		Args:        args,
		Dir:         r.dir,
		Description: "Initializing Terraform",
	})
}

// Plan runs terraform plan with the environment variable file, writing the
// plan to tfplan for a subsequent Apply
func (r *Runner) Plan(ctx context.Context) error {
	args := []string{"plan", "-out=tfplan"}
	if r.cfg.VarFile != "" {
		args = append(args, "-var-file="+r.cfg.VarFile)
	}
	return r.exec.Run(ctx, cmdexec.Command{
		Name:        "terraform",
		Args:        args,
		Dir:         r.dir,
		Description: "Planning infrastructure changes",
	})
}

// Apply runs terraform apply without interactive approval
func (r *Runner) Apply(ctx context.Context) error {
	args := []string{"apply", "-auto-approve"}
	if r.cfg.VarFile != "" {
		args = append(args, "-var-file="+r.cfg.VarFile)
	}
	return r.exec.Run(ctx, cmdexec.Command{
		Name:        "terraform",
		Args:        args,
		Dir:         r.dir,
		Description: "Applying infrastructure changes",
	})
}

// Destroy tears down all managed resources. Callers are responsible for the
// confirmation gate; this method performs no prompting.
func (r *Runner) Destroy(ctx context.Context) error {
	args := []string{"destroy", "-auto-approve"}
	if r.cfg.VarFile != "" {
		args = append(args, "-var-file="+r.cfg.VarFile)
	}
	return r.exec.Run(ctx, cmdexec.Command{
		Name:        "terraform",
		Args:        args,
		Dir:         r.dir,
		Description: "Destroying infrastructure",
	})
}

// Outputs reads terraform output -json. Missing state yields an empty map.
func (r *Runner) Outputs(ctx context.Context) (Outputs, error) {
	data, err := r.exec.Output(ctx, cmdexec.Command{
		Name:        "terraform",
		Args:        []string{"output", "-json"},
		Dir:         r.dir,
		Description: "Reading Terraform outputs",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read terraform outputs: %w", err)
	}
	return ParseOutputs(data)
}
