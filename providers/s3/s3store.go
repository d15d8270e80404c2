// Package s3store obfuscates objects held in S3-compatible storage.
//
// Store fetches an object, runs it through the obfuscation engine, and
// either returns the transformed bytes or uploads them to a target URI.
// The engine itself stays storage-agnostic; this package is the boundary
// that knows about buckets, keys and content types.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hengadev/obfx"
)

// s3Client interface for the S3 operations used here (allows mocking)
type s3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds configuration for the object store.
type Config struct {
	// Region is the AWS region (e.g., "eu-west-2")
	// If empty, uses AWS_REGION environment variable or AWS config file
	Region string

	// AWSConfig is an optional pre-configured AWS config
	// If provided, Region is ignored
	AWSConfig *aws.Config
}

// Store processes objects in S3-compatible storage.
type Store struct {
	client s3Client
}

// New creates a Store from AWS configuration.
//
// Usage:
//
//	store, err := s3store.New(ctx, s3store.Config{})                      // default config
//	store, err := s3store.New(ctx, s3store.Config{Region: "eu-west-2"})  // specific region
func New(ctx context.Context, cfg Config) (*Store, error) {
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
			return nil, fmt.Errorf("%w: failed to load AWS config: %w", obfx.ErrStorageUnavailable, err)
		}
	}

	return &Store{client: s3.NewFromConfig(awsConfig)}, nil
}

// ParseURI splits an "s3://bucket/key" URI into bucket and key. Any other
// scheme, a missing bucket or a missing key is rejected before any network
// call is made.
func ParseURI(uri string) (bucket, key string, err error) {
	const scheme = "s3://"
	if !strings.HasPrefix(uri, scheme) {
		return "", "", fmt.Errorf("%w: invalid S3 URI %q: must look like s3://bucket/key",
			obfx.ErrInvalidRequest, uri)
	}

	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, scheme), "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: invalid S3 URI %q: must look like s3://bucket/key",
			obfx.ErrInvalidRequest, uri)
	}

	return bucket, key, nil
}

// ProcessToBytes fetches the object at uri, obfuscates the named fields,
// and returns the transformed bytes. An empty format is auto-detected from
// the object key's extension. Options are passed through to the engine, so
// callers control key material, mode and the rest per call.
func (s *Store) ProcessToBytes(ctx context.Context, uri string, sensitiveFields []string, format string, opts ...obfx.Option) ([]byte, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	format, err = resolveFormat(key, format)
	if err != nil {
		return nil, err
	}

	object, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch s3://%s/%s: %w",
			obfx.ErrStorageUnavailable, bucket, key, err)
	}
	defer object.Body.Close()

	pinned := make([]obfx.Option, 0, len(opts)+1)
	pinned = append(pinned, opts...)
	pinned = append(pinned, obfx.WithFormat(format))

	var buf bytes.Buffer
	if _, err := obfx.ObfuscateStream(ctx, object.Body, &buf, sensitiveFields, pinned...); err != nil {
		return nil, fmt.Errorf("obfuscating s3://%s/%s: %w", bucket, key, err)
	}

	return buf.Bytes(), nil
}

// ProcessAndUpload fetches the object at sourceURI, obfuscates it, and
// uploads the result to targetURI. The target URI is validated before any
// fetch happens, so a bad destination fails fast instead of after the work.
func (s *Store) ProcessAndUpload(ctx context.Context, sourceURI, targetURI string, sensitiveFields []string, format string, opts ...obfx.Option) error {
	targetBucket, targetKey, err := ParseURI(targetURI)
	if err != nil {
		return err
	}

	_, sourceKey, err := ParseURI(sourceURI)
	if err != nil {
		return err
	}
	format, err = resolveFormat(sourceKey, format)
	if err != nil {
		return err
	}

	data, err := s.ProcessToBytes(ctx, sourceURI, sensitiveFields, format, opts...)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(targetBucket),
		Key:         aws.String(targetKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(format)),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload s3://%s/%s: %w",
			obfx.ErrStorageUnavailable, targetBucket, targetKey, err)
	}

	return nil
}

// ProcessCSVToBytes is the legacy CSV-only entry point: the object is
// processed as csv regardless of its key. New code should call
// ProcessToBytes.
func (s *Store) ProcessCSVToBytes(ctx context.Context, uri string, sensitiveFields []string, opts ...obfx.Option) ([]byte, error) {
	return s.ProcessToBytes(ctx, uri, sensitiveFields, obfx.FormatCSV, opts...)
}

func resolveFormat(key, format string) (string, error) {
	if format != "" {
		return format, nil
	}
	return obfx.DetectFormat(key)
}

func contentTypeFor(format string) string {
	switch strings.ToLower(format) {
	case obfx.FormatCSV:
		return "text/csv"
	case obfx.FormatJSON:
		return "application/json"
	case obfx.FormatJSONL:
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}
