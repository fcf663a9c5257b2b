package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading and validation
type Loader struct {
	envDir      string
	environment string
}

// NewLoader creates a loader for environments/<environment>/config.yaml
// rooted at envDir
func NewLoader(envDir, environment string) *Loader {
	return &Loader{
		envDir:      envDir,
		environment: environment,
	}
}

// Load reads the environment configuration, applies defaults and environment
// variable overrides, and validates the result
func (l *Loader) Load() (*EnvironmentConfig, error) {
	dir := filepath.Join(l.envDir, l.environment)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("unknown environment %q: directory %s not found", l.environment, dir)
	}

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	cfg := &EnvironmentConfig{Environment: l.environment}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	l.applyDefaults(cfg, dir)
	l.applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) applyDefaults(cfg *EnvironmentConfig, dir string) {
	if cfg.Terraform.Dir == "" {
		cfg.Terraform.Dir = "terraform"
	}
	if cfg.Terraform.VarFile == "" {
		cfg.Terraform.VarFile = filepath.Join(dir, "terraform.tfvars")
	}
	if cfg.Terraform.Backend == "" {
		cfg.Terraform.Backend = "local"
	}
	if cfg.Terraform.Backend == "s3" && cfg.Terraform.BackendFile == "" {
		cfg.Terraform.BackendFile = filepath.Join(dir, "backend.hcl")
	}
	if cfg.Scenarios.Dir == "" {
		cfg.Scenarios.Dir = "scenarios"
	}
	if cfg.Vault.AuthPath == "" {
		cfg.Vault.AuthPath = "kubernetes"
	}
	if cfg.Vault.AuditLogPath == "" {
		cfg.Vault.AuditLogPath = "/vault/logs/audit.log"
	}
	if cfg.Vault.DatabaseMount == "" {
		cfg.Vault.DatabaseMount = "database"
	}
	if cfg.Vault.Role == "" {
		cfg.Vault.Role = "app"
	}
	if cfg.Vault.Policy == "" {
		cfg.Vault.Policy = "app-secrets"
	}
	if cfg.Vault.SecretsPath == "" {
		cfg.Vault.SecretsPath = "secret/data/" + cfg.Project.Name
	}
	if cfg.Vault.ServiceAccount == "" {
		cfg.Vault.ServiceAccount = "secrets-demo"
	}
	if cfg.Vault.Namespace == "" {
		cfg.Vault.Namespace = "default"
	}
	if cfg.Vault.DefaultTTL == "" {
		cfg.Vault.DefaultTTL = "1h"
	}
	if cfg.Vault.MaxTTL == "" {
		cfg.Vault.MaxTTL = "24h"
	}
	if cfg.Vault.Database.Port == 0 {
		cfg.Vault.Database.Port = 5432
	}
	if cfg.Vault.Database.AdminUser == "" {
		cfg.Vault.Database.AdminUser = "postgres"
	}
}

// applyEnvironmentOverrides lets exported variables win over file values,
// matching the variable names the shell tooling consumed
func (l *Loader) applyEnvironmentOverrides(cfg *EnvironmentConfig) {
	if v := os.Getenv("PROJECT_NAME"); v != "" {
		cfg.Project.Name = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("VAULT_ADDR"); v != "" {
		cfg.Vault.Addr = v
	}
	if v := os.Getenv("K8S_HOST"); v != "" {
		cfg.Vault.KubernetesHost = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Vault.Database.Host = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Vault.Database.Name = v
	}
	if v := os.Getenv("DB_ADMIN_USER"); v != "" {
		cfg.Vault.Database.AdminUser = v
	}
}
