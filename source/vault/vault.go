package vault

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/vault-client-go"

	"github.com/sxwebdev/xenv/source"
)

// KV reads the data of one secret.
type KV interface {
	Read(ctx context.Context, mount, path string) (map[string]any, error)
}

// New logs in to Vault, reads every path once and returns the merged
// snapshot. A path is "mount/path/to/secret" or "path" (DefaultMount), with
// an optional "#key" suffix selecting a single key of the secret.
func New(ctx context.Context, cfg Config, paths ...string) (source.Map, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cfg.defaults()

	return Snapshot(ctx, &clientKV{client: client, version: cfg.KVVersion}, cfg, paths...)
}

// NewClient builds an authenticated Vault client.
func NewClient(ctx context.Context, cfg Config) (*vault.Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("vault address is required")
	}

	if cfg.Auth == nil {
		return nil, ErrNoAuthMethod
	}

	opts := []vault.ClientOption{
		vault.WithAddress(cfg.Address),
	}

	if cfg.TLS != nil {
		tlsConfig, err := buildTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		opts = append(opts, vault.WithHTTPClient(&http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		}))
	}

	client, err := vault.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if cfg.Namespace != "" {
		if err := client.SetNamespace(cfg.Namespace); err != nil {
			return nil, fmt.Errorf("failed to set namespace: %w", err)
		}
	}

	if err := cfg.Auth.Login(ctx, client); err != nil {
		return nil, newError("auth", "", err)
	}

	return client, nil
}

// Snapshot reads every path through kv and merges the secrets in order.
// Keys of later paths override keys of earlier ones.
func Snapshot(ctx context.Context, kv KV, cfg Config, paths ...string) (source.Map, error) {
	cfg.defaults()

	snap := make(source.Map)

	for _, p := range paths {
		secretPath, key, err := parsePath(p)
		if err != nil {
			return nil, err
		}

		mount, rest := splitMountPath(secretPath, cfg.DefaultMount)

		data, err := kv.Read(ctx, mount, rest)
		if err != nil {
			var vaultErr *Error
			if errors.As(err, &vaultErr) {
				return nil, err
			}
			return nil, newError("read", secretPath, err)
		}
		if data == nil {
			return nil, newError("read", secretPath, ErrSecretNotFound)
		}

		values := convertToStringMap(data)

		if key == "" {
			maps.Copy(snap, values)
			continue
		}

		v, ok := values[key]
		if !ok {
			return nil, newError("read", p, ErrKeyNotFound)
		}
		snap[key] = v
	}

	return snap, nil
}

type clientKV struct {
	client  *vault.Client
	version int
}

func (c *clientKV) Read(ctx context.Context, mount, path string) (map[string]any, error) {
	full := mount + "/" + path

	if c.version == 1 {
		resp, err := c.client.Secrets.KvV1Read(ctx, path, vault.WithMountPath(mount))
		if err != nil {
			return nil, wrapVaultError("read", full, err)
		}
		return resp.Data, nil
	}

	resp, err := c.client.Secrets.KvV2Read(ctx, path, vault.WithMountPath(mount))
	if err != nil {
		return nil, wrapVaultError("read", full, err)
	}

	return resp.Data.Data, nil
}

func wrapVaultError(op, path string, err error) error {
	switch {
	case vault.IsErrorStatus(err, http.StatusNotFound):
		return newError(op, path, ErrSecretNotFound)
	case vault.IsErrorStatus(err, http.StatusForbidden):
		return newError(op, path, ErrPermissionDenied)
	}

	return newError(op, path, err)
}

// parsePath splits "path#key" into its parts. The key is optional.
func parsePath(p string) (secretPath, key string, err error) {
	secretPath, key, hasKey := strings.Cut(p, "#")
	secretPath = strings.Trim(strings.TrimSpace(secretPath), "/")
	key = strings.TrimSpace(key)

	if secretPath == "" || (hasKey && key == "") {
		return "", "", newError("parse", p, ErrInvalidPath)
	}

	return secretPath, key, nil
}

// splitMountPath splits a path into mount and secret path. A path without a
// slash lives under defaultMount.
func splitMountPath(p, defaultMount string) (mount, secretPath string) {
	mount, secretPath, ok := strings.Cut(p, "/")
	if !ok {
		return defaultMount, p
	}

	return mount, secretPath
}

func convertToStringMap(data map[string]any) map[string]string {
	result := make(map[string]string, len(data))
	for k, v := range data {
		if str, ok := v.(string); ok {
			result[k] = str
		} else {
			result[k] = fmt.Sprintf("%v", v)
		}
	}
	return result
}

func buildTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.Insecure, //nolint:gosec
		ServerName:         cfg.ServerName,
	}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}

		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
