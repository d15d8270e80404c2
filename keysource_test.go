package obfx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKeySource_DefaultVariable(t *testing.T) {
	t.Setenv(EnvKey, "testkey")

	key, err := EnvKeySource{}.Key(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte("testkey"), key)
}

func TestEnvKeySource_CustomVariable(t *testing.T) {
	t.Setenv("MY_SERVICE_KEY", "other")

	key, err := EnvKeySource{Var: "MY_SERVICE_KEY"}.Key(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte("other"), key)
}

func TestEnvKeySource_Missing(t *testing.T) {
	t.Setenv(EnvKey, "")

	key, err := EnvKeySource{}.Key(context.Background())

	require.Error(t, err)
	assert.Nil(t, key)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Contains(t, err.Error(), EnvKey)
}

func TestStaticKeySource(t *testing.T) {
	key, err := StaticKeySource{KeyBytes: []byte("fixed")}.Key(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte("fixed"), key)
}

func TestStaticKeySource_Empty(t *testing.T) {
	_, err := StaticKeySource{}.Key(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFailingKeySource(t *testing.T) {
	_, err := FailingKeySource{}.Key(context.Background())
	assert.ErrorIs(t, err, ErrKeyNotFound)

	sentinel := errors.New("boom")
	_, err = FailingKeySource{Err: sentinel}.Key(context.Background())
	assert.ErrorIs(t, err, sentinel)
}
