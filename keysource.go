package obfx

import (
	"context"
	"fmt"
	"os"
)

// KeySource resolves the obfuscation key material. Implementations back it
// with an environment variable, a secret manager, or a fixed value; the
// engine never caches or logs the bytes it is handed.
type KeySource interface {
	// Key returns the key material, or an error wrapping ErrKeyNotFound
	// when no key is available.
	Key(ctx context.Context) ([]byte, error)
}

// EnvKeySource resolves the key from an environment variable. It is the
// default source when a stream is started without an explicit key.
type EnvKeySource struct {
	// Var names the environment variable to consult. Empty means EnvKey.
	Var string
}

// Key returns the variable's value as bytes. An unset or empty variable is
// a configuration error.
func (s EnvKeySource) Key(ctx context.Context) ([]byte, error) {
	name := s.Var
	if name == "" {
		name = EnvKey
	}
	value := os.Getenv(name)
	if value == "" {
		return nil, fmt.Errorf("%w: set the %s environment variable", ErrKeyNotFound, name)
	}
	return []byte(value), nil
}

// StaticKeySource hands out a fixed key. Useful in tests and for callers
// that manage key material themselves.
type StaticKeySource struct {
	KeyBytes []byte
}

// Key returns the configured bytes, or ErrKeyNotFound when empty.
func (s StaticKeySource) Key(ctx context.Context) ([]byte, error) {
	if len(s.KeyBytes) == 0 {
		return nil, fmt.Errorf("%w: static key source holds no key", ErrKeyNotFound)
	}
	return s.KeyBytes, nil
}
