package core

// table.go is the tabular engine: it turns an uploaded CSV byte stream into
// a header plus data rows. Inputs are read fully into memory; balance reports
// are small and the pipeline needs random access to columns.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// utf8BOM is commonly added by Windows programs (Excel "CSV UTF-8").
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed CSV: header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
	Lines  []int // 1-indexed source line of each row, for rejection reports

	exact map[string]int
	loose HeaderIndex
}

// ReadTable reads r to EOF and parses it as CSV.
func ReadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseTable(data)
}

// ParseTable parses CSV bytes. The first non-empty record is the header.
// A UTF-8 BOM is stripped and invalid UTF-8 bytes are replaced with '?'.
func ParseTable(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("?"))

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Ragged rows are tolerated; missing cells read as empty
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}

	t := &Table{
		Header: header,
		exact:  make(map[string]int, len(header)),
		loose:  MakeHeaderIndex(header),
	}
	for i, h := range header {
		if _, dup := t.exact[h]; !dup {
			t.exact[h] = i
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("invalid csv at line %d: %w", parseErr.Line, err)
			}
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		t.Rows = append(t.Rows, record)
		t.Lines = append(t.Lines, line)
	}

	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the position of a header. Exact matching compares names
// byte for byte; loose matching ignores case, surrounding spaces and quotes.
// When a header repeats, the first occurrence wins.
func (t *Table) Column(name string, loose bool) (int, bool) {
	var pos int
	var ok bool
	if loose {
		pos, ok = t.loose[strings.ToLower(CleanCell(name))]
	} else {
		pos, ok = t.exact[name]
	}
	return pos, ok
}

// Value returns the cell at row i, column pos exactly as read.
// Negative positions and short rows read as empty.
func (t *Table) Value(i, pos int) string {
	row := t.Rows[i]
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return row[pos]
}
