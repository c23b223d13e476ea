package core

// validation.go provides the header gate that runs before any row is read.
//
// Each source must carry its required columns. A missing column is fatal
// for the run: no aggregation starts and no partial output is produced.
// Row-level problems are not validation errors; see normalize.go.

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from one source table.
type SchemaError struct {
	Source   Source
	Label    string   // Display name of the table
	Required []string // Every required column, in declaration order
	Missing  []string // Required columns absent from the header
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table %q: missing required columns: %s",
		e.Source, e.Label, strings.Join(e.Missing, ", "))
}

// UserText is the message shown to the person who uploaded the file.
func (e *SchemaError) UserText() string {
	quoted := make([]string, len(e.Required))
	for i, c := range e.Required {
		quoted[i] = "'" + c + "'"
	}
	return fmt.Sprintf("%s must contain %s columns.", e.Label, joinList(quoted))
}

// ValidateHeaders checks that all required columns exist in the table header.
func ValidateHeaders(def SourceDefinition, t *Table) error {
	var missing []string
	for _, col := range def.Columns {
		if _, ok := t.Column(col, def.LooseHeaders); !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &SchemaError{
			Source:   def.Source,
			Label:    def.Label,
			Required: def.Columns,
			Missing:  missing,
		}
	}
	return nil
}

// joinList renders "a", "a and b", or "a, b, and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
