package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/vault/api"

	"github.com/chalkan3/sloth-secrets/pkg/config"
)

// BootstrapConfig carries everything the bootstrap sequence writes to Vault
type BootstrapConfig struct {
	config.VaultConfig

	// AdminPassword is the RDS master password used once to configure the
	// database secrets engine; Vault rotates it away at the end of the run
	AdminPassword string

	// StaticSecrets are demo KV v2 entries written under SecretsPath
	StaticSecrets map[string]any
}

// Bootstrapper runs the ordered bootstrap sequence. Steps that enable
// engines or auth methods tolerate "already enabled" responses so the whole
// sequence can be re-run against the same server.
type Bootstrapper struct {
	client *Client
}

// NewBootstrapper creates a Bootstrapper
func NewBootstrapper(client *Client) *Bootstrapper {
	return &Bootstrapper{client: client}
}

// isAlreadyEnabled classifies the idempotency errors Vault returns when an
// audit device, auth method, or secrets engine is enabled twice
func isAlreadyEnabled(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "path is already in use") ||
		strings.Contains(msg, "already in use") ||
		strings.Contains(msg, "existing mount")
}

// Bootstrap runs the full sequence in order. Ordering matters: the auth
// method must exist before roles reference it, and the database connection
// must exist before roles and rotation.
func (b *Bootstrapper) Bootstrap(ctx context.Context, cfg BootstrapConfig) error {
	steps := []struct {
		name string
		fn   func(context.Context, BootstrapConfig) error
	}{
		{"enable audit device", b.enableAudit},
		{"enable kubernetes auth", b.enableKubernetesAuth},
		{"configure kubernetes auth", b.configureKubernetesAuth},
		{"write static secrets", b.writeStaticSecrets},
		{"mount database engine", b.mountDatabaseEngine},
		{"configure database connection", b.configureDatabaseConnection},
		{"write database role", b.writeDatabaseRole},
		{"write access policy", b.writePolicy},
		{"write kubernetes auth role", b.writeKubernetesAuthRole},
		{"rotate root credential", b.rotateRootCredential},
		{"verify credential issuance", b.verifyCredentialIssuance},
	}

	for _, step := range steps {
		if err := step.fn(ctx, cfg); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		color.Green("✓ %s", step.name)
	}
	return nil
}

func (b *Bootstrapper) enableAudit(ctx context.Context, cfg BootstrapConfig) error {
	err := b.client.Sys().EnableAuditWithOptionsWithContext(ctx, "file", &api.EnableAuditOptions{
		Type: "file",
		Options: map[string]string{
			"file_path": cfg.AuditLogPath,
		},
	})
	if isAlreadyEnabled(err) {
		color.Yellow("audit device already enabled, continuing")
		return nil
	}
	return err
}

func (b *Bootstrapper) enableKubernetesAuth(ctx context.Context, cfg BootstrapConfig) error {
	err := b.client.Sys().EnableAuthWithOptionsWithContext(ctx, cfg.AuthPath, &api.EnableAuthOptions{
		Type: "kubernetes",
	})
	if isAlreadyEnabled(err) {
		color.Yellow("kubernetes auth already enabled, continuing")
		return nil
	}
	return err
}

func (b *Bootstrapper) configureKubernetesAuth(ctx context.Context, cfg BootstrapConfig) error {
	_, err := b.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("auth/%s/config", cfg.AuthPath),
		map[string]any{
			"kubernetes_host": cfg.KubernetesHost,
		})
	return err
}

func (b *Bootstrapper) writeStaticSecrets(ctx context.Context, cfg BootstrapConfig) error {
	if len(cfg.StaticSecrets) == 0 {
		return nil
	}
	_, err := b.client.Logical().WriteWithContext(ctx, cfg.SecretsPath, map[string]any{
		"data": cfg.StaticSecrets,
	})
	return err
}

func (b *Bootstrapper) mountDatabaseEngine(ctx context.Context, cfg BootstrapConfig) error {
	err := b.client.Sys().MountWithContext(ctx, cfg.DatabaseMount, &api.MountInput{
		Type: "database",
	})
	if isAlreadyEnabled(err) {
		color.Yellow("database engine already mounted, continuing")
		return nil
	}
	return err
}

// ConnectionURL builds the templated postgres connection string the database
// engine stores. Vault substitutes the credential placeholders itself.
func ConnectionURL(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgresql://{{username}}:{{password}}@%s:%d/%s?sslmode=require",
		db.Host, db.Port, db.Name)
}

func (b *Bootstrapper) configureDatabaseConnection(ctx context.Context, cfg BootstrapConfig) error {
	_, err := b.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("%s/config/%s", cfg.DatabaseMount, cfg.Database.Name),
		map[string]any{
			"plugin_name":    "postgresql-database-plugin",
			"connection_url": ConnectionURL(cfg.Database),
			"allowed_roles":  cfg.Role,
			"username":       cfg.Database.AdminUser,
			"password":       cfg.AdminPassword,
		})
	return err
}

// CreationStatements is the SQL template the database role runs for each
// issued credential
const CreationStatements = `CREATE ROLE "{{name}}" WITH LOGIN PASSWORD '{{password}}' VALID UNTIL '{{expiration}}';
GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO "{{name}}";`

// RevocationStatements is run when a lease expires or is revoked
const RevocationStatements = `REASSIGN OWNED BY "{{name}}" TO postgres;
DROP OWNED BY "{{name}}";
DROP ROLE IF EXISTS "{{name}}";`

func (b *Bootstrapper) writeDatabaseRole(ctx context.Context, cfg BootstrapConfig) error {
	_, err := b.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("%s/roles/%s", cfg.DatabaseMount, cfg.Role),
		map[string]any{
			"db_name":               cfg.Database.Name,
			"creation_statements":   CreationStatements,
			"revocation_statements": RevocationStatements,
			"default_ttl":           cfg.DefaultTTL,
			"max_ttl":               cfg.MaxTTL,
		})
	return err
}

// PolicyHCL renders the access policy granting the demo workload read access
// to its static secrets and its dynamic database credentials
func PolicyHCL(cfg BootstrapConfig) string {
	kvPath := strings.TrimPrefix(cfg.SecretsPath, "secret/data/")
	return fmt.Sprintf(`path "secret/data/%s" {
  capabilities = ["read"]
}

path "%s/creds/%s" {
  capabilities = ["read"]
}
`, kvPath, cfg.DatabaseMount, cfg.Role)
}

func (b *Bootstrapper) writePolicy(ctx context.Context, cfg BootstrapConfig) error {
	return b.client.Sys().PutPolicyWithContext(ctx, cfg.Policy, PolicyHCL(cfg))
}

func (b *Bootstrapper) writeKubernetesAuthRole(ctx context.Context, cfg BootstrapConfig) error {
	_, err := b.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("auth/%s/role/%s", cfg.AuthPath, cfg.Role),
		map[string]any{
			"bound_service_account_names":      cfg.ServiceAccount,
			"bound_service_account_namespaces": cfg.Namespace,
			"policies":                         cfg.Policy,
			"ttl":                              cfg.DefaultTTL,
		})
	return err
}

func (b *Bootstrapper) rotateRootCredential(ctx context.Context, cfg BootstrapConfig) error {
	_, err := b.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("%s/rotate-root/%s", cfg.DatabaseMount, cfg.Database.Name), nil)
	return err
}

// verifyCredentialIssuance generates one throwaway credential from the role
// and revokes its lease immediately
func (b *Bootstrapper) verifyCredentialIssuance(ctx context.Context, cfg BootstrapConfig) error {
	secret, err := b.client.Logical().ReadWithContext(ctx,
		fmt.Sprintf("%s/creds/%s", cfg.DatabaseMount, cfg.Role))
	if err != nil {
		return fmt.Errorf("failed to generate test credential: %w", err)
	}
	if secret == nil || secret.LeaseID == "" {
		return fmt.Errorf("role %s returned no credential", cfg.Role)
	}
	if err := b.client.Sys().RevokeWithContext(ctx, secret.LeaseID); err != nil {
		return fmt.Errorf("failed to revoke test credential lease: %w", err)
	}
	return nil
}
