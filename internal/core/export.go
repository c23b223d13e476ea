package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the comparison rows with the profile's output headers.
// Numbers are plain decimal text; unmatched cells carry the sentinel text.
func WriteCSV(w io.Writer, rows []ComparisonRow, out OutputColumns) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(out.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			string(row.Key),
			row.LedgerBalance.String(),
			row.StatementBalance.Text(out.Unmatched),
			row.Difference.Text(out.Unmatched),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// EncodeCSV returns the comparison CSV as bytes.
func EncodeCSV(rows []ComparisonRow, out OutputColumns) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRejectedCSV writes rejected rows prefixed by their line and reason,
// followed by the original cells under the source header.
func WriteRejectedCSV(w io.Writer, header []string, rejected []RejectedRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"_source", "_line", "_error"}, header...)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rejected {
		record := append([]string{
			string(row.Source),
			strconv.Itoa(row.Line),
			string(row.Reason),
		}, row.Data...)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write rejected row %d: %w", row.Line, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTemplate writes a header-only CSV for a source definition.
func WriteTemplate(w io.Writer, def SourceDefinition) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(def.Columns); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
