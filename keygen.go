package obfx

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/hengadev/errsx"
	"golang.org/x/crypto/argon2"
)

// GenerateKey returns a new random obfuscation key of KeyLength bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return key, nil
}

// GenerateKeyString returns a new random key encoded as hex, convenient for
// populating the OBFUSCATOR_KEY environment variable.
func GenerateKeyString() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// Argon2Params defines the parameters for Argon2id key derivation.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params returns recommended parameters for Argon2id.
func DefaultArgon2Params() *Argon2Params {
	return &Argon2Params{
		Memory:      64 * 1024, // 64MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   KeyLength,
	}
}

// Validate checks that the parameters are within acceptable ranges.
func (p *Argon2Params) Validate() error {
	errs := errsx.Map{}

	if p.Memory < 8192 {
		errs.Set("memory", fmt.Errorf("memory must be at least 8192 KiB, got %d", p.Memory))
	}
	if p.Iterations < 2 {
		errs.Set("iterations", fmt.Errorf("iterations must be at least 2, got %d", p.Iterations))
	}
	if p.Parallelism < 1 {
		errs.Set("parallelism", fmt.Errorf("parallelism must be at least 1, got %d", p.Parallelism))
	}
	if p.SaltLength < 16 {
		errs.Set("saltLength", fmt.Errorf("salt length must be at least 16 bytes, got %d", p.SaltLength))
	}
	if p.KeyLength < 32 {
		errs.Set("keyLength", fmt.Errorf("key length must be at least 32 bytes, got %d", p.KeyLength))
	}

	return errs.AsError()
}

// DeriveKey derives an obfuscation key from a passphrase with Argon2id.
// The same passphrase, salt and parameters always derive the same key, so
// operators can reproduce a key without distributing raw key material.
// A nil params uses DefaultArgon2Params.
func DeriveKey(passphrase, salt []byte, params *Argon2Params) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase must not be empty", ErrInvalidConfiguration)
	}
	if params == nil {
		params = DefaultArgon2Params()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("validate Argon2Params: %w", err)
	}
	if uint32(len(salt)) < params.SaltLength {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes, got %d",
			ErrInvalidConfiguration, params.SaltLength, len(salt))
	}
	return argon2.IDKey(passphrase, salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength), nil
}

// GenerateSalt returns a random salt sized for DeriveKey. A nil params uses
// DefaultArgon2Params.
func GenerateSalt(params *Argon2Params) ([]byte, error) {
	if params == nil {
		params = DefaultArgon2Params()
	}
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}
