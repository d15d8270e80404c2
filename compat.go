package obfx

import (
	"bytes"
	"context"
	"io"
	"strings"
)

// ObfuscateCSV is the legacy CSV-only entry point kept for callers that
// predate the format registry. It pins the format to csv regardless of any
// WithFormat option and discards the record count. New code should call
// ObfuscateStream.
func ObfuscateCSV(ctx context.Context, in io.Reader, out io.Writer, sensitiveFields []string, opts ...Option) error {
	pinned := make([]Option, 0, len(opts)+1)
	pinned = append(pinned, opts...)
	pinned = append(pinned, WithFormat(FormatCSV))

	_, err := ObfuscateStream(ctx, in, out, sensitiveFields, pinned...)
	return err
}

// ObfuscateCSVString obfuscates CSV text held in memory and returns the
// transformed text. Convenient for small payloads and tests; large inputs
// should go through ObfuscateStream to keep memory bounded.
func ObfuscateCSVString(ctx context.Context, input string, sensitiveFields []string, opts ...Option) (string, error) {
	var buf bytes.Buffer
	if err := ObfuscateCSV(ctx, strings.NewReader(input), &buf, sensitiveFields, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}
