// Package config loads and validates per-environment deployment configuration
package config

import (
	"fmt"
	"net"
	"time"
)

// EnvironmentConfig is the full configuration for one named environment
type EnvironmentConfig struct {
	Environment string          `yaml:"-"`
	Project     ProjectConfig   `yaml:"project"`
	AWS         AWSConfig       `yaml:"aws"`
	Terraform   TerraformConfig `yaml:"terraform"`
	Scenarios   ScenariosConfig `yaml:"scenarios"`
	Charts      []ChartConfig   `yaml:"charts"`
	Vault       VaultConfig     `yaml:"vault"`
}

// ProjectConfig identifies the deployment
type ProjectConfig struct {
	Name string `yaml:"name"`
}

// AWSConfig holds cloud provisioning parameters passed through to Terraform
type AWSConfig struct {
	Region  string `yaml:"region"`
	VPCCidr string `yaml:"vpcCidr"`
}

// TerraformConfig locates the Terraform working directory and its
// environment-specific variable and backend files
type TerraformConfig struct {
	Dir         string `yaml:"dir"`
	VarFile     string `yaml:"varFile"`
	Backend     string `yaml:"backend"` // local | s3
	BackendFile string `yaml:"backendFile"`
	StateBucket string `yaml:"stateBucket"`
}

// ScenariosConfig locates the secrets-delivery demo manifests
type ScenariosConfig struct {
	Dir        string   `yaml:"dir"`
	Namespaces []string `yaml:"namespaces"`
}

// HelmRepo is a chart repository to register before installs
type HelmRepo struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ChartConfig describes one helm release to install or upgrade
type ChartConfig struct {
	Release    string         `yaml:"release"`
	Chart      string         `yaml:"chart"`
	Repo       HelmRepo       `yaml:"repo"`
	Namespace  string         `yaml:"namespace"`
	ValuesFile string         `yaml:"valuesFile"`
	Values     map[string]any `yaml:"values"`
	// Timeout is a Go duration string passed to helm --timeout, e.g. "10m"
	Timeout string `yaml:"timeout"`
}

// VaultConfig holds the Vault bootstrap parameters
type VaultConfig struct {
	Addr           string         `yaml:"addr"`
	KubernetesHost string         `yaml:"kubernetesHost"`
	AuthPath       string         `yaml:"authPath"`
	AuditLogPath   string         `yaml:"auditLogPath"`
	DatabaseMount  string         `yaml:"databaseMount"`
	Role           string         `yaml:"role"`
	Policy         string         `yaml:"policy"`
	SecretsPath    string         `yaml:"secretsPath"`
	ServiceAccount string         `yaml:"serviceAccount"`
	Namespace      string         `yaml:"namespace"`
	DefaultTTL     string         `yaml:"defaultTTL"`
	MaxTTL         string         `yaml:"maxTTL"`
	Database       DatabaseConfig `yaml:"database"`
}

// DatabaseConfig identifies the RDS instance Vault issues credentials for
type DatabaseConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Name      string `yaml:"name"`
	AdminUser string `yaml:"adminUser"`
}

// Validate checks the configuration for basic well-formedness
func (c *EnvironmentConfig) Validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("project.name is required")
	}
	if c.AWS.Region == "" {
		return fmt.Errorf("aws.region is required")
	}
	if c.AWS.VPCCidr != "" {
		if _, _, err := net.ParseCIDR(c.AWS.VPCCidr); err != nil {
			return fmt.Errorf("aws.vpcCidr %q is not a valid CIDR: %w", c.AWS.VPCCidr, err)
		}
	}
	if c.Terraform.Backend != "" && c.Terraform.Backend != "local" && c.Terraform.Backend != "s3" {
		return fmt.Errorf("terraform.backend must be local or s3, got %q", c.Terraform.Backend)
	}
	if c.Vault.DefaultTTL != "" {
		if _, err := time.ParseDuration(c.Vault.DefaultTTL); err != nil {
			return fmt.Errorf("vault.defaultTTL %q is not a valid duration: %w", c.Vault.DefaultTTL, err)
		}
	}
	if c.Vault.MaxTTL != "" {
		if _, err := time.ParseDuration(c.Vault.MaxTTL); err != nil {
			return fmt.Errorf("vault.maxTTL %q is not a valid duration: %w", c.Vault.MaxTTL, err)
		}
	}
	for i, chart := range c.Charts {
		if chart.Release == "" || chart.Chart == "" {
			return fmt.Errorf("charts[%d]: release and chart are required", i)
		}
		if chart.Timeout != "" {
			if _, err := time.ParseDuration(chart.Timeout); err != nil {
				return fmt.Errorf("charts[%d]: timeout %q is not a valid duration: %w", i, chart.Timeout, err)
			}
		}
	}
	return nil
}
