// Package vaultkv resolves obfuscation keys from HashiCorp Vault's KV v2
// secrets engine.
//
// The key source reads one field of one KV v2 secret and hands its bytes to
// the engine, implementing obfx.KeySource. Connection and authentication
// settings come from the standard VAULT_* environment variables. Secrets
// are read on every call, so rotating the key in Vault takes effect on the
// next stream.
package vaultkv

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"github.com/hengadev/obfx"
)

// DefaultField is the key inside the KV v2 data map read when Config.Field
// is empty.
const DefaultField = "key"

// Config holds configuration for the Vault KV v2 key source.
type Config struct {
	// Path is the full KV v2 read path, e.g. "secret/data/obfx/prod/key".
	// Note the "/data/" segment required by the KV v2 API.
	Path string

	// Field is the key inside the secret's data map holding the key
	// material. Empty means DefaultField.
	Field string
}

// KeySource implements obfx.KeySource backed by Vault KV v2.
type KeySource struct {
	client *api.Client
	path   string
	field  string
}

// New creates a Vault KV v2 key source.
//
// The KV v2 engine must be enabled in Vault before use:
//
//	vault secrets enable -path=secret kv-v2
//
// Usage:
//
//	keys, err := vaultkv.New(vaultkv.Config{Path: "secret/data/obfx/prod/key"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	count, err := obfx.ObfuscateStream(ctx, in, out, fields, obfx.WithKeySource(keys))
func New(cfg Config) (*KeySource, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: vault secret path is required", obfx.ErrInvalidConfiguration)
	}

	client, err := createVaultClient()
	if err != nil {
		return nil, err
	}

	field := cfg.Field
	if field == "" {
		field = DefaultField
	}

	return &KeySource{
		client: client,
		path:   cfg.Path,
		field:  field,
	}, nil
}

// Key retrieves the obfuscation key from the configured secret path. A
// missing secret or field is reported as a key-not-found configuration
// error, any other Vault failure as a retryable storage error.
func (k *KeySource) Key(ctx context.Context) ([]byte, error) {
	secret, err := k.client.Logical().ReadWithContext(ctx, k.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %q from Vault KV: %w",
			obfx.ErrSecretsUnavailable, k.path, err)
	}

	return keyFromSecret(secret, k.path, k.field)
}

// keyFromSecret unwraps the KV v2 response envelope and extracts the key
// material. Vault reports "not found" as a nil secret, not an error.
func keyFromSecret(secret *api.Secret, path, field string) ([]byte, error) {
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: no secret at %q", obfx.ErrKeyNotFound, path)
	}

	// KV v2 wraps the actual data in a "data" key
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid KV v2 secret format at %q",
			obfx.ErrSecretsUnavailable, path)
	}

	value, ok := data[field].(string)
	if !ok || value == "" {
		return nil, fmt.Errorf("%w: field %q not present at %q", obfx.ErrKeyNotFound, field, path)
	}

	return []byte(value), nil
}

// StoreKey writes key material to the configured path. KV v2 versions the
// secret, so the previous key stays recoverable through Vault itself.
func (k *KeySource) StoreKey(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key must not be empty", obfx.ErrInvalidConfiguration)
	}

	// KV v2 requires data to be wrapped in a "data" key
	data := map[string]interface{}{
		"data": map[string]interface{}{
			k.field: string(key),
		},
	}

	_, err := k.client.Logical().WriteWithContext(ctx, k.path, data)
	if err != nil {
		return fmt.Errorf("%w: failed to store key in Vault KV: %w",
			obfx.ErrSecretsUnavailable, err)
	}

	return nil
}
