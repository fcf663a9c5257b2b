package cmd

import (
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/spf13/cobra"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/internal/helm"
	"github.com/chalkan3/sloth-secrets/internal/kubeconfig"
	"github.com/chalkan3/sloth-secrets/internal/status"
	"github.com/chalkan3/sloth-secrets/internal/terraform"
	"github.com/chalkan3/sloth-secrets/internal/verify"
	"github.com/chalkan3/sloth-secrets/pkg/config"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status <environment>",
	Short: "Show what is currently deployed for an environment",
	Long: `Status reports the Terraform outputs, VPC state, helm releases, and demo
workloads of an environment. An environment with no Terraform state produces
an empty report and exits successfully without contacting AWS or the
cluster.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		environment := args[0]
		cfg, err := config.NewLoader(envDir, environment).Load()
		if err != nil {
			return err
		}

		exec := cmdexec.New(verbose)
		builder := &status.Builder{
			Environment: environment,
			Project:     cfg.Project.Name,
			Region:      cfg.AWS.Region,
			TF:          terraform.New(exec, cfg.Terraform),
			Namespaces:  cfg.Scenarios.Namespaces,
		}

		// Cloud and cluster collaborators are best-effort; the report
		// degrades to its Terraform-only sections without them.
		if awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context(), awsconfig.WithRegion(cfg.AWS.Region)); err == nil {
			builder.EC2 = ec2.NewFromConfig(awsCfg)
		}
		if path, err := kubeconfig.New(exec).Path(environment); err == nil {
			builder.Helm = helm.New(exec, path)
			if v, err := verify.New(path); err == nil {
				builder.K8s = v.Clientset()
			}
		}

		report := builder.Build(cmd.Context())

		switch statusFormat {
		case "json":
			return report.RenderJSON(cmd.OutOrStdout())
		case "yaml":
			return report.RenderYAML(cmd.OutOrStdout())
		case "table":
			return report.RenderTable(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unknown format %q (expected table, json, or yaml)", statusFormat)
		}
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "table", "Output format: table, json, or yaml")
	rootCmd.AddCommand(statusCmd)
}
