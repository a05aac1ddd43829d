// Package vault reads HashiCorp Vault KV secrets into an immutable settings
// snapshot.
//
// Secrets are read once, when the snapshot is built. Every key of every
// secret becomes a settings key:
//
//	snap, err := vault.New(ctx, vault.Config{
//	    Address: "https://vault.example.com:8200",
//	    Auth:    vault.WithToken(token),
//	}, "secret/myapp", "kv/shared/db#password")
//	cfg, err := xenv.Load[Config](xenv.WithSource(source.Chain{snap, source.Env()}))
package vault

import (
	"os"
)

// Config holds Vault client configuration.
type Config struct {
	// Address is the Vault server address (e.g., "https://vault.example.com:8200").
	Address string

	// Namespace is the Vault namespace (Enterprise feature).
	Namespace string

	// TLS configures TLS settings for Vault connection.
	TLS *TLSConfig

	// Auth configures the authentication method.
	Auth AuthMethod

	// DefaultMount is the secrets engine mount used for paths without one.
	// Defaults to "secret".
	DefaultMount string

	// KVVersion specifies KV secrets engine version (1 or 2).
	// Defaults to 2.
	KVVersion int
}

// TLSConfig holds TLS configuration for Vault connection.
type TLSConfig struct {
	// CACert is the path to a PEM-encoded CA certificate file.
	CACert string

	// ClientCert is the path to a PEM-encoded client certificate.
	ClientCert string

	// ClientKey is the path to a PEM-encoded client key.
	ClientKey string

	// ServerName is the server name to use for TLS verification.
	ServerName string

	// Insecure disables TLS verification.
	Insecure bool
}

// ConfigFromEnv builds a token authenticated configuration from VAULT_ADDR,
// VAULT_TOKEN, VAULT_NAMESPACE, VAULT_CACERT and VAULT_SKIP_VERIFY.
func ConfigFromEnv() Config {
	cfg := Config{
		Address:   os.Getenv("VAULT_ADDR"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Auth:      WithToken(os.Getenv("VAULT_TOKEN")),
	}

	caCert := os.Getenv("VAULT_CACERT")
	skipVerify := os.Getenv("VAULT_SKIP_VERIFY")
	if caCert != "" || skipVerify == "true" || skipVerify == "1" {
		cfg.TLS = &TLSConfig{
			CACert:   caCert,
			Insecure: skipVerify == "true" || skipVerify == "1",
		}
	}

	return cfg
}

func (c *Config) defaults() {
	if c.DefaultMount == "" {
		c.DefaultMount = "secret"
	}
	if c.KVVersion == 0 {
		c.KVVersion = 2
	}
}
