package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/internal/kubeconfig"
	"github.com/chalkan3/sloth-secrets/internal/verify"
	"github.com/chalkan3/sloth-secrets/pkg/config"
)

const (
	demoDeployment = "secrets-demo"
	demoSecret     = "demo-credentials"
	demoSelector   = "app=secrets-demo"
)

var verifyTimeout time.Duration

var verifyCmd = &cobra.Command{
	Use:   "verify <environment>",
	Short: "Verify the demo workloads received their secrets",
	Long: `Verify walks the scenario namespaces, waits for each demo deployment to
become ready, checks that the delivered Secret exists, and prints the pod
logs showing which secret values the workload saw. A deployment that never
becomes ready is reported as a warning; verify only fails when the cluster
is unreachable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("Verify: " + args[0])
		cfg, err := config.NewLoader(envDir, args[0]).Load()
		if err != nil {
			return err
		}
		path, err := kubeconfig.New(cmdexec.New(verbose)).Path(args[0])
		if err != nil {
			return err
		}
		v, err := verify.New(path)
		if err != nil {
			return err
		}
		return runVerify(cmd, v.WithTimeout(verifyTimeout), cfg.Scenarios.Namespaces)
	},
}

func runVerify(cmd *cobra.Command, v *verify.Verifier, namespaces []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	for _, ns := range namespaces {
		printSection(ns)

		if err := v.WaitDeploymentReady(ctx, ns, demoDeployment); err != nil {
			printWarning("%s/%s not ready: %v", ns, demoDeployment, err)
			continue
		}
		printSuccess("%s/%s is ready", ns, demoDeployment)

		exists, err := v.SecretExists(ctx, ns, demoSecret)
		if err != nil {
			return err
		}
		if exists {
			printSuccess("secret %s/%s delivered", ns, demoSecret)
		} else {
			printWarning("secret %s/%s not found", ns, demoSecret)
		}

		if err := v.PrintPodLogs(ctx, out, ns, demoSelector, 20); err != nil {
			printWarning("could not read pod logs in %s: %v", ns, err)
		}
	}
	return nil
}

func init() {
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", verify.DefaultTimeout, "How long to wait for each deployment")
	rootCmd.AddCommand(verifyCmd)
}
