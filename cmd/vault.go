package cmd

import (
	"fmt"
	"os"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chalkan3/sloth-secrets/internal/vault"
	"github.com/chalkan3/sloth-secrets/pkg/config"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the in-cluster Vault server",
}

var vaultBootstrapCmd = &cobra.Command{
	Use:   "bootstrap <environment>",
	Short: "Configure Vault auth, secrets engines, and policies",
	Long: `Bootstrap configures a freshly installed Vault server for the demo:
audit logging, Kubernetes auth, static KV secrets, the PostgreSQL dynamic
secrets engine, the access policy, and the auth role. It finishes by rotating
the database root credential and verifying that Vault can issue credentials.

The sequence is safe to re-run; steps that are already configured are
reported as warnings and skipped.

Requires VAULT_ADDR and VAULT_TOKEN. The RDS master password is read from
DB_ADMIN_PASSWORD or prompted for interactively.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("Vault Bootstrap: " + args[0])
		cfg, err := config.NewLoader(envDir, args[0]).Load()
		if err != nil {
			return err
		}

		addr := cfg.Vault.Addr
		if v := os.Getenv("VAULT_ADDR"); v != "" {
			addr = v
		}
		client, err := vault.NewClient(vault.ClientConfig{
			Address: addr,
			Token:   os.Getenv("VAULT_TOKEN"),
		})
		if err != nil {
			return err
		}

		password, err := adminPassword()
		if err != nil {
			return err
		}

		bcfg := vault.BootstrapConfig{
			VaultConfig:   cfg.Vault,
			AdminPassword: password,
			StaticSecrets: demoSecrets(cfg.Project.Name),
		}
		if err := vault.NewBootstrapper(client).Bootstrap(cmd.Context(), bcfg); err != nil {
			return err
		}
		printSuccess("Vault bootstrap complete")
		return nil
	},
}

func adminPassword() (string, error) {
	if v := os.Getenv("DB_ADMIN_PASSWORD"); v != "" {
		return v, nil
	}
	fmt.Print("Database admin password: ")
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("database admin password is required (set DB_ADMIN_PASSWORD)")
	}
	return string(data), nil
}

// demoSecrets are the static KV entries the demo workloads read back out
func demoSecrets(project string) map[string]any {
	return map[string]any{
		"api_key":     uuid.New().String(),
		"environment": project,
		"message":     "delivered by vault",
	}
}

func init() {
	vaultCmd.AddCommand(vaultBootstrapCmd)
	rootCmd.AddCommand(vaultCmd)
}
