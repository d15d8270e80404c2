package obfx

import (
	"context"
	"fmt"
	"log/slog"
)

// Option adjusts the settings for a single obfuscation call.
type Option func(c *config) error

// config carries the per-call settings assembled from Options. Every call
// builds its own config, so concurrent calls share no mutable state.
type config struct {
	format      string
	primaryKey  string
	mode        Mode
	maskToken   string
	tokenLength int
	key         []byte
	keySource   KeySource
	logger      *slog.Logger
	hook        ObservabilityHook
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		format:      FormatCSV,
		primaryKey:  DefaultPrimaryKeyField,
		mode:        ModeToken,
		maskToken:   DefaultMaskToken,
		tokenLength: DefaultTokenLength,
		keySource:   EnvKeySource{},
		logger:      slog.Default(),
		hook:        &NoOpObservabilityHook{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// resolveKey returns the explicit key when one was supplied, otherwise it
// asks the configured key source. Mask mode resolves the key too: a missing
// key is a configuration error regardless of mode, so a broken deployment
// surfaces before any masked output is produced.
func (c *config) resolveKey(ctx context.Context) ([]byte, error) {
	if len(c.key) > 0 {
		return c.key, nil
	}
	return c.keySource.Key(ctx)
}

// obfuscateFunc binds the resolved key and call settings into the callback
// handed to format adapters.
func (c *config) obfuscateFunc(key []byte) ObfuscateFunc {
	return func(primaryValue, fieldName string) string {
		return ObfuscateValue(key, primaryValue, fieldName, c.tokenLength, c.mode, c.maskToken)
	}
}

// WithFormat selects the serialization format of the input and output
// streams. The tag is resolved through the format registry, so unknown tags
// fail the call before any input is read. Default: csv.
func WithFormat(format string) Option {
	return func(c *config) error {
		c.format = format
		return nil
	}
}

// WithPrimaryKey names the field whose value identifies a record when
// deriving tokens. Default: "id".
func WithPrimaryKey(field string) Option {
	return func(c *config) error {
		if field == "" {
			return fmt.Errorf("%w: primary key field must not be empty", ErrInvalidConfiguration)
		}
		c.primaryKey = field
		return nil
	}
}

// WithMode selects between deterministic tokens and fixed masking.
// Default: ModeToken.
func WithMode(mode Mode) Option {
	return func(c *config) error {
		if mode != ModeToken && mode != ModeMask {
			return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, mode)
		}
		c.mode = mode
		return nil
	}
}

// WithMaskToken sets the replacement string used in ModeMask.
// Default: "***".
func WithMaskToken(token string) Option {
	return func(c *config) error {
		c.maskToken = token
		return nil
	}
}

// WithTokenLength sets how many hex characters of the HMAC digest each
// token keeps. Values outside (0, MaxTokenLength] are clamped the same way
// Token clamps them. Default: DefaultTokenLength.
func WithTokenLength(n int) Option {
	return func(c *config) error {
		c.tokenLength = n
		return nil
	}
}

// WithKey supplies the obfuscation key directly, bypassing the key source.
func WithKey(key []byte) Option {
	return func(c *config) error {
		if len(key) == 0 {
			return fmt.Errorf("%w: key must not be empty", ErrInvalidConfiguration)
		}
		c.key = key
		return nil
	}
}

// WithKeySource sets the source consulted when no explicit key was
// supplied. Default: EnvKeySource reading OBFUSCATOR_KEY.
func WithKeySource(source KeySource) Option {
	return func(c *config) error {
		if source == nil {
			return fmt.Errorf("%w: key source must not be nil", ErrInvalidConfiguration)
		}
		c.keySource = source
		return nil
	}
}

// WithLogger sets the logger that receives the per-call summary event.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("%w: logger must not be nil", ErrInvalidConfiguration)
		}
		c.logger = logger
		return nil
	}
}

// WithObservabilityHook registers a hook notified when a stream completes
// or fails. Default: no-op.
func WithObservabilityHook(hook ObservabilityHook) Option {
	return func(c *config) error {
		if hook == nil {
			return fmt.Errorf("%w: observability hook must not be nil", ErrInvalidConfiguration)
		}
		c.hook = hook
		return nil
	}
}
