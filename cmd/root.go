package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envDir      string
	verbose     bool
	autoApprove bool

	// Version information - set by main.go
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// SetVersionInfo sets the version information from main.go and refreshes
// the rendered --version template
func SetVersionInfo(version, commit, date, builtBy string) {
	Version = version
	Commit = commit
	Date = date
	BuiltBy = builtBy

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(fmt.Sprintf(`Sloth Secrets %s
  Commit:    %s
  Built:     %s
  Built by:  %s
`, Version, Commit, Date, BuiltBy))
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sloth-secrets",
	Short: "Deploy the EKS secrets-management demo platform",
	Long: `Sloth Secrets provisions an EKS cluster, an RDS instance, and the IAM
roles backing three secrets-delivery mechanisms (External Secrets Operator,
Secrets Store CSI driver, and HashiCorp Vault), then deploys demo workloads
that print which secrets they received.

Infrastructure is managed by Terraform; charts are installed with Helm. The
terraform, kubectl, helm, and aws binaries must be available in PATH.

Actions run against a named environment directory (environments/<name>/)
holding the Terraform variable file, backend configuration, and the
environment's config.yaml.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envDir, "env-dir", "environments", "Directory holding per-environment configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&autoApprove, "yes", "y", false, "Auto-approve without prompting")

	SetVersionInfo(Version, Commit, Date, BuiltBy)
}
