// Package obfx provides streaming obfuscation of sensitive fields in tabular
// data, replacing values with deterministic keyed tokens or fixed masks.
//
// obfx reads records from an input stream, replaces the values of the fields
// you name, and writes the transformed records to an output stream in the
// same format. Tokens are derived with HMAC-SHA256 from the record's primary
// key value and the field name, so the same record always yields the same
// token under the same key: obfuscated datasets stay joinable without
// exposing the original values.
//
// # Key Features
//
//   - Deterministic keyed tokens (HMAC-SHA256) or fixed masking per field
//   - Streaming single-pass processing with bounded memory
//   - Format registry with filename detection (csv today, json/jsonl and
//     parquet reserved)
//   - Pluggable key sources: environment, AWS Secrets Manager, Vault KV v2
//   - S3 object processing and a JSON invocation boundary for serverless use
//
// # Quick Start
//
// Obfuscate a CSV file, reading the key from OBFUSCATOR_KEY:
//
//	in, _ := os.Open("customers.csv")
//	out, _ := os.Create("customers.obfuscated.csv")
//
//	count, err := obfx.ObfuscateStream(ctx, in, out,
//	    []string{"email", "phone"},
//	    obfx.WithPrimaryKey("customer_id"),
//	)
//
// Mask instead of tokenize:
//
//	count, err := obfx.ObfuscateStream(ctx, in, out,
//	    []string{"email"},
//	    obfx.WithMode(obfx.ModeMask),
//	    obfx.WithMaskToken("[REDACTED]"),
//	)
//
// # Key Resolution
//
// Keys are resolved per call, never cached: an explicit obfx.WithKey wins,
// otherwise the configured obfx.KeySource is consulted. The default source
// reads the OBFUSCATOR_KEY environment variable; the providers under
// providers/secrets add AWS Secrets Manager and HashiCorp Vault backends.
// A missing key fails the call before any input is read.
//
// # Object Storage
//
// The providers/s3 package processes s3:// objects end to end: fetch,
// obfuscate, and either return the transformed bytes or upload them to a
// target URI. The handler package wraps the same flow behind a JSON
// request/response boundary for Lambda-style invocation.
package obfx
