package obfx

// This file provides test utilities for exercising adapters and streams
// without real key material.

import (
	"context"
	"fmt"
)

// StubObfuscateFunc returns an ObfuscateFunc whose output encodes its
// inputs as "OBFUSCATED_<field>_<primaryValue>". Adapter tests use it to
// assert which fields were replaced and which primary key value each
// replacement saw, without involving key material.
func StubObfuscateFunc() ObfuscateFunc {
	return func(primaryValue, fieldName string) string {
		return fmt.Sprintf("OBFUSCATED_%s_%s", fieldName, primaryValue)
	}
}

// FailingKeySource always fails with the configured error, or with
// ErrKeyNotFound when Err is nil. Useful for exercising configuration
// error paths.
type FailingKeySource struct {
	Err error
}

// Key implements KeySource.
func (s FailingKeySource) Key(ctx context.Context) ([]byte, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return nil, ErrKeyNotFound
}
