package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/internal/kubeconfig"
)

var helmCmd = &cobra.Command{
	Use:   "helm <environment> [helm-args...]",
	Short: "Execute Helm commands against an environment's cluster",
	Long: `Execute Helm commands by calling the helm binary.

This command requires the 'helm' binary to be installed and available in your PATH.
You can install Helm from: https://helm.sh/docs/intro/install/

The kubeconfig written by 'sloth-secrets apply' for the environment is used
automatically.`,
	Example: `  # List all releases
  sloth-secrets helm dev list -A

  # Get release status
  sloth-secrets helm dev status vault -n vault

  # Uninstall a release
  sloth-secrets helm dev uninstall external-secrets -n external-secrets`,
	DisableFlagParsing: true,
	RunE:               runHelm,
}

func init() {
	rootCmd.AddCommand(helmCmd)
}

func runHelm(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
		return fmt.Errorf("environment is required\nUsage: sloth-secrets helm <environment> [helm-args...]")
	}

	helmBinary, err := exec.LookPath("helm")
	if err != nil {
		return fmt.Errorf("helm binary not found in PATH. Please install Helm from https://helm.sh/docs/intro/install/")
	}
	environment := args[0]
	helmArgs := args[1:]

	path, err := kubeconfig.New(cmdexec.New(verbose)).Path(environment)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no kubeconfig for environment %q; run 'sloth-secrets apply %s' first", environment, environment)
	}

	helmExec := exec.Command(helmBinary, helmArgs...)
	helmExec.Stdin = os.Stdin
	helmExec.Stdout = os.Stdout
	helmExec.Stderr = os.Stderr
	helmExec.Env = append(os.Environ(), "KUBECONFIG="+path)

	return helmExec.Run()
}
