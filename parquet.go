package obfx

import (
	"context"
	"fmt"
	"io"
)

// ParquetAdapter is the registered adapter for the parquet tag. Parquet is
// recognized but not implemented, pending an Apache Arrow integration:
// ProcessStream fails before reading any input, so callers can rely on the
// output stream staying untouched.
type ParquetAdapter struct{}

// ProcessStream always fails with a capability error.
func (ParquetAdapter) ProcessStream(ctx context.Context, in io.Reader, out io.Writer, sensitiveFields []string, primaryKeyField string, obfuscate ObfuscateFunc) (int, error) {
	return 0, fmt.Errorf("%w: parquet support requires the Apache Arrow columnar reader (github.com/apache/arrow/go), only csv is currently available",
		ErrFormatNotImplemented)
}
