package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/spektr-org/erlens/engine"
)

// ============================================================================
// CSV HELPER — Writes engine tables back out as CSV
// ============================================================================
// Consumer decides where the bytes go (file, HTTP response, stdout).
// The header row uses column keys so the output can be re-imported; the
// summary, when present, becomes a final row labelled in the first column.
// ============================================================================

// ErrNoTable is returned when there is nothing to write.
var ErrNoTable = errors.New("no table to write")

// WriteTableCSV writes td as CSV to w.
func WriteTableCSV(w io.Writer, td *engine.TableData) error {
	if td == nil {
		return ErrNoTable
	}
	cw := csv.NewWriter(w)

	header := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		header[i] = c.Key
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range td.Rows {
		if err := cw.Write(padRow(row, len(header))); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if td.Summary != nil && len(header) > 0 {
		row := make([]string, len(header))
		row[0] = td.Summary.Label
		for i, c := range td.Columns {
			if v, ok := td.Summary.Values[c.Key]; ok && i > 0 {
				row[i] = v
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV summary: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// TableCSV renders td to CSV bytes.
func TableCSV(td *engine.TableData) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTableCSV(&buf, td); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
