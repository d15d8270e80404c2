package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/hengadev/obfx"
	"github.com/hengadev/obfx/providers/secrets/awssm"
	"github.com/hengadev/obfx/providers/secrets/vaultkv"
)

// keygenCommand mints or derives a key. Without a store target the key is
// printed to stdout so it can be piped into a secret store; with one, the
// key goes straight to the store and is never printed. Nothing is logged.
func keygenCommand(args []string) {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	passphrase := fs.String("passphrase", "", "Derive the key from a passphrase instead of random bytes")
	saltHex := fs.String("salt", "", "Hex salt for passphrase derivation (default: random)")
	storeSecret := fs.String("store-secret", "", "Store the key in this AWS Secrets Manager secret instead of printing it")
	region := fs.String("region", "", "AWS region for -store-secret")
	storeVault := fs.String("store-vault", "", "Store the key at this Vault KV v2 path instead of printing it")
	vaultField := fs.String("vault-field", "", "Vault data field for -store-vault (default \""+vaultkv.DefaultField+"\")")

	fs.Parse(args)

	keyHex, saltOut, err := generateKeyMaterial(*passphrase, *saltHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Key generation failed: %v\n", err)
		os.Exit(1)
	}

	if *storeSecret == "" && *storeVault == "" {
		if saltOut == "" {
			fmt.Println(keyHex)
			return
		}
		fmt.Printf("key:  %s\n", keyHex)
		// The salt is printed so the same key can be derived again later.
		fmt.Printf("salt: %s\n", saltOut)
		return
	}

	ctx := context.Background()

	if *storeSecret != "" {
		keys, err := awssm.New(ctx, awssm.Config{SecretName: *storeSecret, Region: *region})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Secrets Manager setup failed: %v\n", err)
			os.Exit(1)
		}
		if err := keys.StoreKey(ctx, []byte(keyHex)); err != nil {
			fmt.Fprintf(os.Stderr, "Storing key failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Key stored in Secrets Manager secret %s\n", *storeSecret)
	}

	if *storeVault != "" {
		keys, err := vaultkv.New(vaultkv.Config{Path: *storeVault, Field: *vaultField})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Vault setup failed: %v\n", err)
			os.Exit(1)
		}
		if err := keys.StoreKey(ctx, []byte(keyHex)); err != nil {
			fmt.Fprintf(os.Stderr, "Storing key failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Key stored in Vault at %s\n", *storeVault)
	}

	if saltOut != "" {
		fmt.Printf("salt: %s\n", saltOut)
	}
}

// generateKeyMaterial returns the key as hex, plus the salt (hex) when the
// key was derived from a passphrase. The hex form is what gets stored: key
// sources hand the stored string's bytes to the engine as-is.
func generateKeyMaterial(passphrase, saltHex string) (string, string, error) {
	if passphrase == "" {
		key, err := obfx.GenerateKeyString()
		return key, "", err
	}

	params := obfx.DefaultArgon2Params()

	var salt []byte
	var err error
	if saltHex != "" {
		salt, err = hex.DecodeString(saltHex)
		if err != nil {
			return "", "", fmt.Errorf("invalid salt: %w", err)
		}
	} else {
		salt, err = obfx.GenerateSalt(params)
		if err != nil {
			return "", "", err
		}
	}

	key, err := obfx.DeriveKey([]byte(passphrase), salt, params)
	if err != nil {
		return "", "", err
	}

	return hex.EncodeToString(key), hex.EncodeToString(salt), nil
}
