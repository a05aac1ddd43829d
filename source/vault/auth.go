package vault

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/vault-client-go"
	"github.com/hashicorp/vault-client-go/schema"
)

// Default auth mounts and the in-cluster service account token.
const (
	DefaultAppRoleMount    = "approle"
	DefaultKubernetesMount = "kubernetes"
	DefaultUserPassMount   = "userpass"
	DefaultJWTPath         = "/var/run/secrets/kubernetes.io/serviceaccount/token"
)

// AuthMethod logs a client in and sets its token.
type AuthMethod interface {
	Login(ctx context.Context, client *vault.Client) error
	Name() string
}

// TokenAuth uses a pre-existing token.
type TokenAuth struct {
	Token string
}

// WithToken creates a TokenAuth with the given token.
func WithToken(token string) AuthMethod {
	return &TokenAuth{Token: token}
}

func (a *TokenAuth) Login(_ context.Context, client *vault.Client) error {
	if a.Token == "" {
		return fmt.Errorf("%w: token is empty", ErrAuthFailed)
	}

	return useToken(client, a.Token)
}

func (a *TokenAuth) Name() string {
	return "token"
}

// AppRoleAuth logs in with a role ID and a secret ID.
type AppRoleAuth struct {
	RoleID    string
	SecretID  string
	MountPath string
}

// WithAppRole creates an AppRoleAuth with the given credentials.
func WithAppRole(roleID, secretID string) AuthMethod {
	return &AppRoleAuth{RoleID: roleID, SecretID: secretID}
}

func (a *AppRoleAuth) Login(ctx context.Context, client *vault.Client) error {
	if a.RoleID == "" {
		return fmt.Errorf("%w: role id is empty", ErrAuthFailed)
	}

	return exchange(client, func() (*vault.Response[map[string]any], error) {
		return client.Auth.AppRoleLogin(ctx, schema.AppRoleLoginRequest{
			RoleId:   a.RoleID,
			SecretId: a.SecretID,
		}, mount(a.MountPath, DefaultAppRoleMount))
	})
}

func (a *AppRoleAuth) Name() string {
	return "approle"
}

// KubernetesAuth logs in with the pod's service account token.
type KubernetesAuth struct {
	Role      string
	JWTPath   string
	MountPath string
}

// WithKubernetes creates a KubernetesAuth with the given role.
func WithKubernetes(role string) AuthMethod {
	return &KubernetesAuth{Role: role}
}

func (a *KubernetesAuth) Login(ctx context.Context, client *vault.Client) error {
	path := a.JWTPath
	if path == "" {
		path = DefaultJWTPath
	}

	jwt, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read service account token: %v", ErrAuthFailed, err)
	}

	return exchange(client, func() (*vault.Response[map[string]any], error) {
		return client.Auth.KubernetesLogin(ctx, schema.KubernetesLoginRequest{
			Role: a.Role,
			Jwt:  string(jwt),
		}, mount(a.MountPath, DefaultKubernetesMount))
	})
}

func (a *KubernetesAuth) Name() string {
	return "kubernetes"
}

// UserPassAuth logs in with a username and a password.
type UserPassAuth struct {
	Username  string
	Password  string
	MountPath string
}

// WithUserPass creates a UserPassAuth with the given credentials.
func WithUserPass(username, password string) AuthMethod {
	return &UserPassAuth{Username: username, Password: password}
}

func (a *UserPassAuth) Login(ctx context.Context, client *vault.Client) error {
	if a.Username == "" {
		return fmt.Errorf("%w: username is empty", ErrAuthFailed)
	}

	return exchange(client, func() (*vault.Response[map[string]any], error) {
		return client.Auth.UserpassLogin(ctx, a.Username, schema.UserpassLoginRequest{
			Password: a.Password,
		}, mount(a.MountPath, DefaultUserPassMount))
	})
}

func (a *UserPassAuth) Name() string {
	return "userpass"
}

// exchange runs a login request and switches the client to the issued token.
func exchange(client *vault.Client, login func() (*vault.Response[map[string]any], error)) error {
	resp, err := login()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	if resp == nil || resp.Auth == nil || resp.Auth.ClientToken == "" {
		return fmt.Errorf("%w: response carries no client token", ErrAuthFailed)
	}

	return useToken(client, resp.Auth.ClientToken)
}

func useToken(client *vault.Client, token string) error {
	if err := client.SetToken(token); err != nil {
		return fmt.Errorf("%w: set token: %v", ErrAuthFailed, err)
	}

	return nil
}

func mount(path, def string) vault.RequestOption {
	if path == "" {
		path = def
	}

	return vault.WithMountPath(path)
}
