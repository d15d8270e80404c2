package obfx

// Environment variable names
const (
	// EnvKey is the environment variable holding the obfuscation key.
	// The default key source reads it when no key was supplied explicitly.
	EnvKey = "OBFUSCATOR_KEY"

	// EnvSecretName is the environment variable naming the secret that holds
	// the obfuscation key in an external secret manager. Used by deployment
	// entrypoints to decide between env-based and managed key resolution.
	EnvSecretName = "OBFUSCATOR_SECRET_NAME"

	// EnvLogLevel is the environment variable controlling log verbosity in
	// the bundled binaries. One of: debug, info, warn, error.
	EnvLogLevel = "LOG_LEVEL"
)

// Format tags accepted by GetAdapter and returned by DetectFormat.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatJSONL   = "jsonl"
	FormatParquet = "parquet"
)

// Default values
const (
	// DefaultPrimaryKeyField is the record field used to identify a record
	// when no primary key field is configured.
	DefaultPrimaryKeyField = "id"

	// DefaultTokenLength is the number of hex characters kept from the
	// HMAC digest when no token length is configured.
	DefaultTokenLength = 16

	// MaxTokenLength is the full hex length of an HMAC-SHA256 digest.
	// Longer requested lengths are capped here.
	MaxTokenLength = 64

	// DefaultMaskToken is the replacement string used in mask mode when no
	// mask token is configured.
	DefaultMaskToken = "***"

	// KeyLength is the size in bytes of keys produced by GenerateKey and
	// DeriveKey.
	KeyLength = 32
)
