// Package vault bootstraps a running Vault server for the secrets demo:
// audit, Kubernetes auth, static KV secrets, and dynamic database
// credentials
package vault

import (
	"fmt"
	"time"

	"github.com/hashicorp/vault/api"
)

// Client wraps the Vault API client
type Client struct {
	*api.Client
}

// ClientConfig holds connection settings for a Vault server
type ClientConfig struct {
	Address string
	Token   string
	Timeout time.Duration
}

// NewClient creates an authenticated Vault client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("vault address is required (set VAULT_ADDR)")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("vault token is required (set VAULT_TOKEN)")
	}

	config := api.DefaultConfig()
	config.Address = cfg.Address
	if cfg.Timeout > 0 {
		config.Timeout = cfg.Timeout
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &Client{Client: client}, nil
}
