package obfx

import (
	"context"
	"io"
)

// ObfuscateStream reads records from in, replaces the values of
// sensitiveFields, and writes the transformed records to out. It returns
// the number of data records processed.
//
// The input format defaults to csv and is selected with WithFormat; the
// format tag is resolved through the registry, so an unknown tag fails the
// call before any input is read. The obfuscation key comes from WithKey, or
// failing that from the configured key source (by default the
// OBFUSCATOR_KEY environment variable); a missing key is a configuration
// error raised before any input is read, in mask mode too.
//
// Processing is a single ordered pass: records are read, transformed and
// written one at a time, memory use stays bounded by record size, and
// cancellation of ctx takes effect between records. Calls are independent;
// no state is shared between them, so concurrent calls on distinct streams
// are safe.
//
// One summary event is logged per successful call, carrying the format tag,
// the record count and the targeted field names. Key material and field
// values never appear in logs or hook notifications.
//
// Example usage:
//
//	count, err := obfx.ObfuscateStream(ctx, in, out,
//	    []string{"email", "phone"},
//	    obfx.WithPrimaryKey("customer_id"),
//	)
//	if err != nil {
//	    return err
//	}
//	log.Printf("obfuscated %d records", count)
func ObfuscateStream(ctx context.Context, in io.Reader, out io.Writer, sensitiveFields []string, opts ...Option) (int, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return 0, err
	}

	key, err := cfg.resolveKey(ctx)
	if err != nil {
		return 0, err
	}

	adapter, err := GetAdapter(cfg.format)
	if err != nil {
		return 0, err
	}

	count, err := adapter.ProcessStream(ctx, in, out, sensitiveFields, cfg.primaryKey, cfg.obfuscateFunc(key))
	if err != nil {
		cfg.hook.OnStreamError(ctx, cfg.format, err)
		return count, err
	}

	cfg.logger.InfoContext(ctx, "obfuscation complete",
		"format", cfg.format,
		"records", count,
		"fields", sensitiveFields,
	)
	cfg.hook.OnStreamComplete(ctx, cfg.format, count, sensitiveFields)

	return count, nil
}
