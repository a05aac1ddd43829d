package vault

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailed       = errors.New("vault: authentication failed")
	ErrNoAuthMethod     = errors.New("vault: no authentication method provided")
	ErrSecretNotFound   = errors.New("vault: secret not found")
	ErrKeyNotFound      = errors.New("vault: key not found in secret")
	ErrPermissionDenied = errors.New("vault: permission denied")
	ErrInvalidPath      = errors.New("vault: invalid secret path format")
)

// Error wraps a failed Vault operation with the path involved.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("vault %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("vault %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, path string, err error) error {
	return &Error{Op: op, Path: path, Err: err}
}
