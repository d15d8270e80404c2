package obfx

import (
	"encoding/hex"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()

	require.NoError(t, err)
	assert.Len(t, key, KeyLength)

	other, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestGenerateKeyString(t *testing.T) {
	s, err := GenerateKeyString()

	require.NoError(t, err)
	decoded, err := hex.DecodeString(s)
	require.NoError(t, err)
	assert.Len(t, decoded, KeyLength)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := make([]byte, 16)

	first, err := DeriveKey([]byte("correct horse battery staple"), salt, nil)
	require.NoError(t, err)
	second, err := DeriveKey([]byte("correct horse battery staple"), salt, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, KeyLength)
}

func TestDeriveKey_PassphraseSensitivity(t *testing.T) {
	salt := make([]byte, 16)

	first, err := DeriveKey([]byte("passphrase-one"), salt, nil)
	require.NoError(t, err)
	second, err := DeriveKey([]byte("passphrase-two"), salt, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDeriveKey_EmptyPassphrase(t *testing.T) {
	_, err := DeriveKey(nil, make([]byte, 16), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestDeriveKey_SaltTooShort(t *testing.T) {
	_, err := DeriveKey([]byte("pass"), make([]byte, 4), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt(nil)

	require.NoError(t, err)
	assert.Len(t, salt, int(DefaultArgon2Params().SaltLength))

	other, err := GenerateSalt(nil)
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)
}

func TestArgon2Params_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Argon2Params
		errKeys []string
	}{
		{
			name:   "defaults are valid",
			params: *DefaultArgon2Params(),
		},
		{
			name: "memory too low",
			params: Argon2Params{
				Memory:      1000,
				Iterations:  3,
				Parallelism: 2,
				SaltLength:  16,
				KeyLength:   32,
			},
			errKeys: []string{"memory"},
		},
		{
			name: "multiple errors",
			params: Argon2Params{
				Memory:      1000,
				Iterations:  1,
				Parallelism: 0,
				SaltLength:  8,
				KeyLength:   16,
			},
			errKeys: []string{"memory", "iterations", "parallelism", "saltLength", "keyLength"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()

			if len(tt.errKeys) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			errs, ok := err.(errsx.Map)
			require.True(t, ok, "expected error to be of type errsx.Map")
			assert.Equal(t, len(tt.errKeys), len(errs))
			for _, key := range tt.errKeys {
				_, ok := errs[key]
				assert.True(t, ok, "expected key %q in errsx.Map", key)
			}
		})
	}
}
