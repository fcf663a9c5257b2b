package cmd

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/internal/helm"
	"github.com/chalkan3/sloth-secrets/internal/kubeconfig"
	"github.com/chalkan3/sloth-secrets/internal/manifests"
	"github.com/chalkan3/sloth-secrets/internal/orchestrator"
	"github.com/chalkan3/sloth-secrets/internal/prereq"
	"github.com/chalkan3/sloth-secrets/internal/terraform"
	"github.com/chalkan3/sloth-secrets/pkg/config"
)

// deployContext bundles the collaborators every deployment action wires up
type deployContext struct {
	environment string
	cfg         *config.EnvironmentConfig
	exec        cmdexec.Runner
	tf          *terraform.Runner
	prereq      *prereq.Checker
	s3          *s3.Client
}

func newDeployContext(ctx context.Context, environment string) (*deployContext, error) {
	cfg, err := config.NewLoader(envDir, environment).Load()
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	exec := cmdexec.New(verbose)
	return &deployContext{
		environment: environment,
		cfg:         cfg,
		exec:        exec,
		tf:          terraform.New(exec, cfg.Terraform),
		prereq:      prereq.New(sts.NewFromConfig(awsCfg), cmdexec.LookPath),
		s3:          s3.NewFromConfig(awsCfg),
	}, nil
}

var initCmd = &cobra.Command{
	Use:   "init <environment>",
	Short: "Initialize the Terraform working directory for an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("Initialize: " + args[0])
		dc, err := newDeployContext(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := dc.prereq.CheckTools(); err != nil {
			return err
		}
		if err := dc.tf.Init(cmd.Context()); err != nil {
			return err
		}
		printSuccess("Terraform initialized for %s", args[0])
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <environment>",
	Short: "Show the Terraform changes an apply would make",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("Plan: " + args[0])
		dc, err := newDeployContext(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := dc.prereq.CheckTools(); err != nil {
			return err
		}
		if err := dc.tf.Init(cmd.Context()); err != nil {
			return err
		}
		return dc.tf.Plan(cmd.Context())
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <environment>",
	Short: "Provision infrastructure and deploy the demo platform",
	Long: `Apply runs the full deployment sequence for an environment:

  1. Verify required tools and AWS credentials
  2. terraform init && terraform apply
  3. Configure kubectl against the new EKS cluster
  4. Install the configured helm charts
  5. Deploy the secrets-demo scenario manifests

Each step reports success, skipped, warning, or fatal; the first fatal step
stops the run. kubectl configuration is skipped with a warning when the
Terraform state exposes no cluster, and the cluster-dependent steps are
skipped with it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("Deploy: " + args[0])
		dc, err := newDeployContext(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return runApply(cmd.Context(), dc)
	},
}

func runApply(ctx context.Context, dc *deployContext) error {
	var (
		identity *prereq.Identity
		outputs  terraform.Outputs
		kubePath string
	)

	steps := []orchestrator.Step{
		{
			Name: "check prerequisites",
			Run: func(ctx context.Context) orchestrator.Result {
				id, err := dc.prereq.Check(ctx)
				if err != nil {
					return orchestrator.Fatal(err)
				}
				identity = id
				if verbose {
					for tool, version := range prereq.ToolVersions(ctx, dc.exec) {
						fmt.Printf("  %s: %s\n", tool, version)
					}
				}
				return orchestrator.Success("authenticated as " + id.ARN)
			},
		},
	}

	if dc.cfg.Terraform.Backend == "s3" {
		steps = append(steps, orchestrator.Step{
			Name: "check state bucket",
			Run: func(ctx context.Context) orchestrator.Result {
				bucket := dc.cfg.Terraform.StateBucket
				if bucket == "" {
					return orchestrator.Skipped("no state bucket configured")
				}
				if err := terraform.CheckStateBucket(ctx, dc.s3, bucket); err != nil {
					return orchestrator.Warning(err, "state bucket "+bucket+" not reachable")
				}
				return orchestrator.Success("state bucket " + bucket + " reachable")
			},
		})
	}

	steps = append(steps,
		orchestrator.Step{
			Name: "terraform init",
			Run: func(ctx context.Context) orchestrator.Result {
				if err := dc.tf.Init(ctx); err != nil {
					return orchestrator.Fatal(err)
				}
				return orchestrator.Success("")
			},
		},
		orchestrator.Step{
			Name: "terraform apply",
			Run: func(ctx context.Context) orchestrator.Result {
				if err := dc.tf.Apply(ctx); err != nil {
					return orchestrator.Fatal(err)
				}
				return orchestrator.Success("")
			},
		},
		orchestrator.Step{
			Name: "read terraform outputs",
			Run: func(ctx context.Context) orchestrator.Result {
				out, err := dc.tf.Outputs(ctx)
				if err != nil {
					return orchestrator.Fatal(err)
				}
				outputs = out
				return orchestrator.Success(fmt.Sprintf("%d outputs", len(out)))
			},
		},
		orchestrator.Step{
			Name: "configure kubectl",
			Run: func(ctx context.Context) orchestrator.Result {
				path, err := kubeconfig.New(dc.exec).Configure(ctx, dc.environment, outputs, dc.cfg.AWS.Region)
				if err != nil {
					return orchestrator.Fatal(err)
				}
				if path == "" {
					return orchestrator.Skipped("no cluster in terraform outputs")
				}
				kubePath = path
				return orchestrator.Success("kubeconfig written to " + path)
			},
		},
		orchestrator.Step{
			Name: "install helm charts",
			Run: func(ctx context.Context) orchestrator.Result {
				if kubePath == "" {
					return orchestrator.Skipped("kubectl not configured")
				}
				if len(dc.cfg.Charts) == 0 {
					return orchestrator.Skipped("no charts configured")
				}
				hc := helm.New(dc.exec, kubePath)
				if err := installCharts(ctx, hc, dc.cfg.Charts); err != nil {
					return orchestrator.Fatal(err)
				}
				return orchestrator.Success(fmt.Sprintf("%d releases", len(dc.cfg.Charts)))
			},
		},
		orchestrator.Step{
			Name: "deploy scenario manifests",
			Run: func(ctx context.Context) orchestrator.Result {
				if kubePath == "" {
					return orchestrator.Skipped("kubectl not configured")
				}
				vars := deployVars(dc.cfg, identity, outputs)
				deployer := manifests.NewDeployer(dc.exec, kubePath)
				if err := deployer.DeployAll(ctx, dc.cfg.Scenarios.Dir, vars); err != nil {
					return orchestrator.Fatal(err)
				}
				return orchestrator.Success("")
			},
		},
	)

	report, err := orchestrator.NewRunner(verbose).Run(ctx, steps)
	if report != nil {
		report.PrintSummary(rootCmd.OutOrStdout())
	}
	return err
}

func installCharts(ctx context.Context, hc *helm.Client, charts []config.ChartConfig) error {
	added := map[string]bool{}
	for _, chart := range charts {
		if chart.Repo.Name != "" && !added[chart.Repo.Name] {
			if err := hc.RepoAdd(ctx, chart.Repo.Name, chart.Repo.URL); err != nil {
				return err
			}
			added[chart.Repo.Name] = true
		}
	}
	if len(added) > 0 {
		if err := hc.RepoUpdate(ctx); err != nil {
			return err
		}
	}
	for _, chart := range charts {
		if err := hc.UpgradeInstall(ctx, chart); err != nil {
			return err
		}
	}
	return nil
}

// deployVars builds the substitution environment for the scenario manifests.
// Terraform output names are uppercased so manifests reference them the same
// way they reference exported shell variables.
func deployVars(cfg *config.EnvironmentConfig, identity *prereq.Identity, outputs terraform.Outputs) map[string]string {
	explicit := map[string]string{
		"PROJECT_NAME": cfg.Project.Name,
		"AWS_REGION":   cfg.AWS.Region,
		"ENVIRONMENT":  cfg.Environment,
	}
	if identity != nil {
		explicit["AWS_ACCOUNT_ID"] = identity.AccountID
		explicit["ECR_REGISTRY"] = identity.ECRRegistry(cfg.AWS.Region)
	}
	for name := range outputs {
		if value, ok := outputs.String(name); ok {
			explicit[strings.ToUpper(name)] = value
		}
	}
	return manifests.EnvironFrom(explicit)
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
}
