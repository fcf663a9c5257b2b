package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	kubectlcmd "k8s.io/kubectl/pkg/cmd"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/internal/kubeconfig"
)

var kubectlCmd = &cobra.Command{
	Use:   "kubectl <environment> [kubectl-args...]",
	Short: "Execute kubectl commands against an environment's cluster",
	Long: `Execute kubectl commands directly using the embedded Kubernetes client.

This command embeds the official kubectl client, providing full kubectl
functionality without requiring a separate kubectl installation.

The kubeconfig written by 'sloth-secrets apply' for the environment is used
automatically, so you don't need to manage kubeconfig files manually.`,
	Example: `  # Get all nodes
  sloth-secrets kubectl dev get nodes

  # Get pods in a scenario namespace
  sloth-secrets kubectl dev get pods -n demo-external-secrets

  # Read the delivered secret
  sloth-secrets kubectl dev get secret demo-credentials -n demo-vault -o yaml

  # Tail the demo workload
  sloth-secrets kubectl dev logs deploy/secrets-demo -n demo-csi`,
	DisableFlagParsing: true,
	RunE:               runKubectl,
}

func init() {
	rootCmd.AddCommand(kubectlCmd)
}

func runKubectl(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
		return fmt.Errorf("environment is required\nUsage: sloth-secrets kubectl <environment> [kubectl-args...]")
	}
	environment := args[0]
	kubectlArgs := args[1:]

	path, err := kubeconfig.New(cmdexec.New(verbose)).Path(environment)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no kubeconfig for environment %q; run 'sloth-secrets apply %s' first", environment, environment)
	}
	os.Setenv("KUBECONFIG", path)

	kubectlRootCmd := kubectlcmd.NewDefaultKubectlCommand()
	kubectlRootCmd.SetArgs(kubectlArgs)
	kubectlRootCmd.SetIn(os.Stdin)
	kubectlRootCmd.SetOut(os.Stdout)
	kubectlRootCmd.SetErr(os.Stderr)

	return kubectlRootCmd.Execute()
}
