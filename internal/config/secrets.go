package config

import (
	"context"
	"fmt"
	"strings"
)

// SecretPrefix marks a value to be fetched from Vault.
const SecretPrefix = "vault:"

// SecretResolver fetches one key of a KV secret.  *vault.Client satisfies it.
type SecretResolver interface {
	Secret(ctx context.Context, path, key string) (string, error)
}

// IsSecretRef reports whether s is a `vault:<path>#<key>` reference.
func IsSecretRef(s string) bool { return strings.HasPrefix(s, SecretPrefix) }

// ParseSecretRef splits `vault:<path>#<key>`.
func ParseSecretRef(s string) (path, key string, err error) {
	if !IsSecretRef(s) {
		return "", "", fmt.Errorf("%q is not a vault reference", s)
	}
	path, key, ok := strings.Cut(strings.TrimPrefix(s, SecretPrefix), "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("malformed vault reference %q, want vault:<path>#<key>", s)
	}
	return path, key, nil
}

// HasSecretRefs reports whether any secret-bearing field needs resolving.
func (c *Config) HasSecretRefs() bool {
	for _, p := range c.secretFields() {
		if IsSecretRef(*p.val) {
			return true
		}
	}
	return false
}

// ResolveSecrets replaces every vault reference in c with its value.
func ResolveSecrets(ctx context.Context, c *Config, r SecretResolver) error {
	for _, f := range c.secretFields() {
		if !IsSecretRef(*f.val) {
			continue
		}
		if r == nil {
			return fmt.Errorf("%s references vault but no vault client is configured", f.name)
		}
		path, key, err := ParseSecretRef(*f.val)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		val, err := r.Secret(ctx, path, key)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.val = val
	}
	return nil
}

type secretField struct {
	name string
	val  *string
}

func (c *Config) secretFields() []secretField {
	return []secretField{
		{"database.dsn", &c.Database.DSN},
		{"database.password", &c.Database.Password},
		{"security.csrf_key", &c.Security.CSRFKey},
	}
}
