package obfx

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// ObfuscateFunc produces the replacement for one sensitive field of one
// record. primaryValue is the record's primary key value, or "" when the
// record has none. Implementations must be total: every call yields a
// replacement string.
type ObfuscateFunc func(primaryValue, fieldName string) string

// FormatAdapter reads records in one serialization format, replaces the
// values of the sensitive fields, and writes the transformed records back
// out in the same format.
//
// Adapters are stateless and safe for concurrent use.
type FormatAdapter interface {
	// ProcessStream transforms in to out record by record and returns the
	// number of data records processed. Implementations stream: memory use
	// is bounded by record size, not input size. The context is checked
	// between records so cancellation takes effect promptly.
	ProcessStream(ctx context.Context, in io.Reader, out io.Writer, sensitiveFields []string, primaryKeyField string, obfuscate ObfuscateFunc) (int, error)
}

// FormatStatus reports the implementation state of a format tag.
type FormatStatus string

const (
	FormatStatusImplemented FormatStatus = "implemented"
	FormatStatusPlanned     FormatStatus = "planned"
)

// Adapters are stateless, so the registry hands out shared values.
var adapters = map[string]FormatAdapter{
	FormatCSV:     CSVAdapter{},
	FormatJSON:    JSONAdapter{},
	FormatJSONL:   JSONAdapter{},
	FormatParquet: ParquetAdapter{},
}

// FormatTags returns the format tags the registry knows about, in stable
// order.
func FormatTags() []string {
	return []string{FormatCSV, FormatJSON, FormatJSONL, FormatParquet}
}

// GetAdapter resolves a format tag to its adapter. Tags are matched
// case-insensitively, so "CSV" and "csv" name the same adapter. Resolving a
// recognized but unimplemented tag succeeds; the returned adapter fails with
// a capability error on first use, which keeps "unknown format" and "known
// but unavailable" distinguishable for callers.
func GetAdapter(format string) (FormatAdapter, error) {
	adapter, ok := adapters[strings.ToLower(format)]
	if !ok {
		return nil, NewUnknownFormatError(format)
	}
	return adapter, nil
}

// DetectFormat maps a filename to a format tag by its extension:
// .csv, .json, .jsonl, .ndjson, .parquet and .pq are recognized, ignoring
// case. Filenames with any other extension yield a format detection error.
func DetectFormat(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	}
	return "", NewFormatDetectionError(filename)
}

// SupportedFormats reports the implementation status of every format tag
// the registry knows about.
func SupportedFormats() map[string]FormatStatus {
	return map[string]FormatStatus{
		FormatCSV:     FormatStatusImplemented,
		FormatJSON:    FormatStatusPlanned,
		FormatJSONL:   FormatStatusPlanned,
		FormatParquet: FormatStatusPlanned,
	}
}
