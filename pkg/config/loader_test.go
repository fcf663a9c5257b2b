package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeEnvConfig(t *testing.T, env, content string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, env)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

const devConfig = `
project:
  name: secrets-demo
aws:
  region: us-west-2
  vpcCidr: 10.0.0.0/16
terraform:
  backend: s3
  stateBucket: secrets-demo-tfstate
charts:
  - release: external-secrets
    chart: external-secrets/external-secrets
    namespace: external-secrets
    repo:
      name: external-secrets
      url: https://charts.external-secrets.io
`

func TestLoad_Defaults(t *testing.T) {
	root := writeEnvConfig(t, "dev", devConfig)

	cfg, err := NewLoader(root, "dev").Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.Terraform.Dir != "terraform" {
		t.Errorf("Terraform.Dir = %q, want terraform", cfg.Terraform.Dir)
	}
	if want := filepath.Join(root, "dev", "terraform.tfvars"); cfg.Terraform.VarFile != want {
		t.Errorf("Terraform.VarFile = %q, want %q", cfg.Terraform.VarFile, want)
	}
	if want := filepath.Join(root, "dev", "backend.hcl"); cfg.Terraform.BackendFile != want {
		t.Errorf("Terraform.BackendFile = %q, want %q", cfg.Terraform.BackendFile, want)
	}
	if cfg.Vault.Database.Port != 5432 {
		t.Errorf("Vault.Database.Port = %d, want 5432", cfg.Vault.Database.Port)
	}
	if cfg.Vault.SecretsPath != "secret/data/secrets-demo" {
		t.Errorf("Vault.SecretsPath = %q", cfg.Vault.SecretsPath)
	}
}

func TestLoad_UnknownEnvironment(t *testing.T) {
	root := writeEnvConfig(t, "dev", devConfig)

	_, err := NewLoader(root, "staging").Load()
	if err == nil {
		t.Fatal("Load() = nil, want error for unknown environment")
	}
	if !strings.Contains(err.Error(), "staging") {
		t.Errorf("error should name the environment, got %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	root := writeEnvConfig(t, "dev", devConfig)

	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("VAULT_ADDR", "http://vault:8200")

	cfg, err := NewLoader(root, "dev").Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.AWS.Region != "eu-central-1" {
		t.Errorf("AWS.Region = %q, want override eu-central-1", cfg.AWS.Region)
	}
	if cfg.Vault.Database.Host != "db.internal" {
		t.Errorf("Vault.Database.Host = %q, want db.internal", cfg.Vault.Database.Host)
	}
	if cfg.Vault.Addr != "http://vault:8200" {
		t.Errorf("Vault.Addr = %q", cfg.Vault.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EnvironmentConfig)
		wantErr string
	}{
		{
			name:    "missing project name",
			mutate:  func(c *EnvironmentConfig) { c.Project.Name = "" },
			wantErr: "project.name",
		},
		{
			name:    "missing region",
			mutate:  func(c *EnvironmentConfig) { c.AWS.Region = "" },
			wantErr: "aws.region",
		},
		{
			name:    "bad cidr",
			mutate:  func(c *EnvironmentConfig) { c.AWS.VPCCidr = "10.0.0.0/99" },
			wantErr: "vpcCidr",
		},
		{
			name:    "bad backend",
			mutate:  func(c *EnvironmentConfig) { c.Terraform.Backend = "consul" },
			wantErr: "terraform.backend",
		},
		{
			name:    "bad ttl",
			mutate:  func(c *EnvironmentConfig) { c.Vault.DefaultTTL = "soon" },
			wantErr: "defaultTTL",
		},
		{
			name:    "chart missing release",
			mutate:  func(c *EnvironmentConfig) { c.Charts = []ChartConfig{{Chart: "x/y"}} },
			wantErr: "charts[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &EnvironmentConfig{
				Project: ProjectConfig{Name: "demo"},
				AWS:     AWSConfig{Region: "us-west-2"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := &EnvironmentConfig{
		Project:   ProjectConfig{Name: "demo"},
		AWS:       AWSConfig{Region: "us-west-2", VPCCidr: "10.0.0.0/16"},
		Terraform: TerraformConfig{Backend: "s3"},
		Vault:     VaultConfig{DefaultTTL: "1h", MaxTTL: "24h"},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
