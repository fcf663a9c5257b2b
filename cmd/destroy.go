package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <environment>",
	Short: "Destroy all infrastructure for an environment",
	Long: `Destroy tears down everything Terraform provisioned for the environment:
the EKS cluster, the RDS instance, the VPC, and the IAM roles.

The command prompts for confirmation and proceeds only when the answer is
exactly "yes". Any other answer aborts without touching the infrastructure.
Pass --yes to skip the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("Destroy: " + args[0])
		dc, err := newDeployContext(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !autoApprove {
			color.Red("This will destroy ALL infrastructure for environment %q.", args[0])
			if !confirmDestroy(cmd.InOrStdin(), cmd.OutOrStdout()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Destroy cancelled.")
				return nil
			}
		}

		if err := dc.prereq.CheckTools(); err != nil {
			return err
		}
		if err := dc.tf.Init(cmd.Context()); err != nil {
			return err
		}
		if err := dc.tf.Destroy(cmd.Context()); err != nil {
			return err
		}
		printSuccess("Environment %s destroyed", args[0])
		return nil
	},
}

// confirmDestroy reads one line and returns true only for the exact answer
// "yes". "y", "Yes", and an empty line all abort.
func confirmDestroy(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, `Type "yes" to confirm: `)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == "yes"
}

func init() {
	rootCmd.AddCommand(destroyCmd)
}
