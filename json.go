package obfx

import (
	"context"
	"fmt"
	"io"
)

// JSONAdapter is the registered adapter for the json and jsonl tags. The
// formats are recognized but not implemented: ProcessStream fails before
// reading any input, so callers can rely on the output stream staying
// untouched.
type JSONAdapter struct{}

// ProcessStream always fails with a capability error.
func (JSONAdapter) ProcessStream(ctx context.Context, in io.Reader, out io.Writer, sensitiveFields []string, primaryKeyField string, obfuscate ObfuscateFunc) (int, error) {
	return 0, fmt.Errorf("%w: json and jsonl support is planned, only csv is currently available",
		ErrFormatNotImplemented)
}
