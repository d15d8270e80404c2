package obfx

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// CSVAdapter transforms comma-separated input with a header row.
//
// The first record is the header and is written through unchanged; it names
// the fields for every following row. Rows are normalized to the header
// width: short rows are padded with empty cells before obfuscation, so a
// sensitive column declared by the header is replaced on every row, and
// cells beyond the header carry no field name and are dropped. A record
// without the primary key column obfuscates against the empty string rather
// than failing. Input without a header row is a format error and nothing is
// written.
type CSVAdapter struct{}

// ProcessStream implements FormatAdapter for CSV. It returns the number of
// data rows written, excluding the header.
func (CSVAdapter) ProcessStream(ctx context.Context, in io.Reader, out io.Writer, sensitiveFields []string, primaryKeyField string, obfuscate ObfuscateFunc) (int, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return 0, ErrMissingHeader
	}
	if err != nil {
		return 0, fmt.Errorf("reading csv header: %w", err)
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("writing csv header: %w", err)
	}

	sensitive := make(map[string]bool, len(sensitiveFields))
	for _, name := range sensitiveFields {
		sensitive[name] = true
	}

	pkIndex := -1
	for i, name := range header {
		if name == primaryKeyField {
			pkIndex = i
			break
		}
	}

	count := 0
	row := make([]string, len(header))
	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading csv record %d: %w", count+1, err)
		}

		for i := range row {
			if i < len(record) {
				row[i] = record[i]
			} else {
				row[i] = ""
			}
		}

		pkValue := ""
		if pkIndex >= 0 {
			pkValue = row[pkIndex]
		}

		for i, name := range header {
			if sensitive[name] {
				row[i] = obfuscate(pkValue, name)
			}
		}

		if err := w.Write(row); err != nil {
			return count, fmt.Errorf("writing csv record %d: %w", count+1, err)
		}
		count++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("flushing csv output: %w", err)
	}
	return count, nil
}
