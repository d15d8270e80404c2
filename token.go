package obfx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Mode selects how sensitive values are replaced.
type Mode string

const (
	// ModeToken replaces each sensitive value with a deterministic keyed
	// token derived from the record's primary key value and the field name.
	ModeToken Mode = "token"

	// ModeMask replaces each sensitive value with a fixed mask token.
	ModeMask Mode = "mask"
)

// fieldSeparator is mixed into the HMAC between the primary key value and
// the field name so that ("ab","c") and ("a","bc") cannot collide.
var fieldSeparator = []byte{'|'}

// Token returns the deterministic replacement token for one sensitive value.
//
// The token is the lowercase hex encoding of HMAC-SHA256(key,
// primaryValue | fieldName), truncated to length characters. The same
// (key, primaryValue, fieldName, length) inputs always yield the same token,
// which preserves joinability across datasets obfuscated with the same key.
// The original field value never participates, so the token reveals nothing
// about it.
//
// A non-positive length falls back to DefaultTokenLength; lengths beyond
// MaxTokenLength are capped. Token never fails: an empty primary key value
// simply produces the token for the empty string.
//
// Example usage:
//
//	key := []byte("demo-key")
//	tok := obfx.Token(key, "user-42", "email", 16)
//	// tok is stable for every dataset sharing this key
func Token(key []byte, primaryValue, fieldName string, length int) string {
	if length <= 0 {
		length = DefaultTokenLength
	}
	if length > MaxTokenLength {
		length = MaxTokenLength
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(primaryValue))
	mac.Write(fieldSeparator)
	mac.Write([]byte(fieldName))

	return hex.EncodeToString(mac.Sum(nil))[:length]
}

// ObfuscateValue returns the replacement for a single sensitive value under
// the given mode. In ModeMask the maskToken is returned unchanged for every
// value; any other mode produces a deterministic token via Token.
//
// Like Token, ObfuscateValue is total: it never fails regardless of inputs.
func ObfuscateValue(key []byte, primaryValue, fieldName string, length int, mode Mode, maskToken string) string {
	if mode == ModeMask {
		return maskToken
	}
	return Token(key, primaryValue, fieldName, length)
}
