// Package awssm resolves obfuscation keys from AWS Secrets Manager.
//
// The key source reads the secret named in its configuration and hands the
// raw secret bytes to the engine, implementing obfx.KeySource. Secrets are
// read on every call: rotating the secret takes effect on the next stream
// without restarting the process.
package awssm

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/hengadev/obfx"
)

// secretsManagerClient interface for AWS Secrets Manager operations (allows mocking)
type secretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// KeySource implements obfx.KeySource backed by AWS Secrets Manager.
type KeySource struct {
	client     secretsManagerClient
	secretName string
}

// New creates a Secrets Manager key source for the named secret.
//
// Usage:
//
//	// Using default AWS configuration
//	keys, err := awssm.New(ctx, awssm.Config{SecretName: "obfx/prod/key"})
//
//	// With specific region
//	keys, err := awssm.New(ctx, awssm.Config{SecretName: "obfx/prod/key", Region: "eu-west-2"})
//
//	// With custom AWS config
//	awsCfg, _ := config.LoadDefaultConfig(ctx)
//	keys, err := awssm.New(ctx, awssm.Config{SecretName: "obfx/prod/key", AWSConfig: &awsCfg})
func New(ctx context.Context, cfg Config) (*KeySource, error) {
	if cfg.SecretName == "" {
		return nil, fmt.Errorf("%w: secret name is required", obfx.ErrInvalidConfiguration)
	}

	var awsConfig aws.Config
	var err error

	if cfg.AWSConfig != nil {
		awsConfig = *cfg.AWSConfig
	} else {
		opts := []func(*config.LoadOptions) error{}
		if cfg.Region != "" {
			opts = append(opts, config.WithRegion(cfg.Region))
		}

		awsConfig, err = config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load AWS config: %w", obfx.ErrSecretsUnavailable, err)
		}
	}

	return &KeySource{
		client:     secretsmanager.NewFromConfig(awsConfig),
		secretName: cfg.SecretName,
	}, nil
}

// Key retrieves the obfuscation key from the configured secret. The secret
// string's bytes are returned as-is; binary secrets are returned unchanged.
// A missing secret is reported as a key-not-found configuration error, any
// other Secrets Manager failure as a retryable storage error.
func (s *KeySource) Key(ctx context.Context) ([]byte, error) {
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		var notFoundErr *types.ResourceNotFoundException
		if errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("%w: secret %q does not exist", obfx.ErrKeyNotFound, s.secretName)
		}
		return nil, fmt.Errorf("%w: failed to read secret %q: %w",
			obfx.ErrSecretsUnavailable, s.secretName, err)
	}

	if result.SecretString != nil && *result.SecretString != "" {
		return []byte(*result.SecretString), nil
	}
	if len(result.SecretBinary) > 0 {
		return result.SecretBinary, nil
	}

	return nil, fmt.Errorf("%w: secret %q is empty", obfx.ErrKeyNotFound, s.secretName)
}

// StoreKey writes key material to the configured secret, creating it when
// absent and versioning it otherwise. Operators use it through the keygen
// command to provision a key without ever printing it.
func (s *KeySource) StoreKey(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key must not be empty", obfx.ErrInvalidConfiguration)
	}

	exists, err := s.secretExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
			SecretId:     aws.String(s.secretName),
			SecretString: aws.String(string(key)),
		})
		if err != nil {
			return fmt.Errorf("%w: failed to update secret %q: %w",
				obfx.ErrSecretsUnavailable, s.secretName, err)
		}
		return nil
	}

	_, err = s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(s.secretName),
		Description:  aws.String("obfx obfuscation key"),
		SecretString: aws.String(string(key)),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create secret %q: %w",
			obfx.ErrSecretsUnavailable, s.secretName, err)
	}
	return nil
}

// secretExists checks for the secret without treating absence as an error.
func (s *KeySource) secretExists(ctx context.Context) (bool, error) {
	_, err := s.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		var notFoundErr *types.ResourceNotFoundException
		if errors.As(err, &notFoundErr) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to describe secret %q: %w",
			obfx.ErrSecretsUnavailable, s.secretName, err)
	}
	return true, nil
}
