package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustTable parses a CSV literal or fails the test.
func mustTable(t *testing.T, data string) *Table {
	t.Helper()
	tbl, err := ParseTable([]byte(data))
	require.NoError(t, err)
	return tbl
}

// cell reads a row by loose header name.
func cell(t *testing.T, tbl *Table, i int, col string) string {
	t.Helper()
	pos, ok := tbl.Column(col, true)
	require.True(t, ok, "column %q", col)
	return tbl.Value(i, pos)
}

func TestParseTable(t *testing.T) {
	tbl := mustTable(t, "Qty,Inventory\n5,Cold-3\n2,Cold-3\n")

	assert.Equal(t, []string{"Qty", "Inventory"}, tbl.Header)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []int{2, 3}, tbl.Lines)
	assert.Equal(t, "5", cell(t, tbl, 0, "Qty"))
	assert.Equal(t, "Cold-3", cell(t, tbl, 1, "inventory"))
}

func TestParseTable_StripsBOM(t *testing.T) {
	tbl := mustTable(t, "\xEF\xBB\xBFQty,Inventory\n1,Wallet 1\n")

	assert.Equal(t, "Qty", tbl.Header[0])
	pos, ok := tbl.Column("Qty", false)
	assert.True(t, ok)
	assert.Equal(t, 0, pos)
}

func TestParseTable_InvalidUTF8Replaced(t *testing.T) {
	tbl := mustTable(t, "Qty,Inventory\n1,Vault\xff 4\n")

	assert.Equal(t, "Vault? 4", cell(t, tbl, 0, "Inventory"))
}

func TestParseTable_Empty(t *testing.T) {
	for _, input := range []string{"", "   \n\n", "\xEF\xBB\xBF"} {
		_, err := ParseTable([]byte(input))
		assert.ErrorIs(t, err, ErrEmptyFile, "input %q", input)
	}
}

func TestParseTable_HeaderOnly(t *testing.T) {
	tbl := mustTable(t, "Date,Wallet Name,Quantity\n")

	assert.Equal(t, 0, tbl.Len())
	_, ok := tbl.Column("Wallet Name", false)
	assert.True(t, ok)
}

func TestParseTable_RaggedRows(t *testing.T) {
	tbl := mustTable(t, "Date,Wallet Name,Quantity\n2025-04-30,Vault-3\n2025-04-30,Vault-4,1,extra\n")

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "", cell(t, tbl, 0, "Quantity"), "short row reads missing cells as empty")
	assert.Equal(t, "1", cell(t, tbl, 1, "Quantity"))
	assert.Equal(t, "", tbl.Value(0, -1), "absent column reads as empty")
}

func TestParseTable_LineNumbersSkipBlankLines(t *testing.T) {
	tbl := mustTable(t, "Qty,Inventory\n\n1,A 1\n\n2,A 2\n")

	assert.Equal(t, []int{3, 5}, tbl.Lines)
}

func TestTable_ValueIsRaw(t *testing.T) {
	tbl := mustTable(t, "Qty,Inventory\n\"=\"\"5\"\"\",  Cold 007  \n")

	assert.Equal(t, `="5"`, cell(t, tbl, 0, "Qty"))
	assert.Equal(t, "  Cold 007  ", cell(t, tbl, 0, "Inventory"))
}

func TestTable_Column(t *testing.T) {
	tbl := mustTable(t, "qty, Inventory ,Qty,Date\n")

	tests := []struct {
		name    string
		col     string
		loose   bool
		wantPos int
		wantOK  bool
	}{
		{name: "exact hit", col: "Qty", wantPos: 2, wantOK: true},
		{name: "exact is case sensitive", col: "QTY", wantOK: false},
		{name: "exact keeps spacing", col: "Inventory", wantOK: false},
		{name: "exact with spacing", col: " Inventory ", wantPos: 1, wantOK: true},
		{name: "loose ignores case, first wins", col: "QTY", loose: true, wantPos: 0, wantOK: true},
		{name: "loose trims", col: "inventory", loose: true, wantPos: 1, wantOK: true},
		{name: "loose miss", col: "Wallet Name", loose: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := tbl.Column(tt.col, tt.loose)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantPos, pos)
			}
		})
	}
}

func TestReadTable(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("Qty,Inventory\n1,A 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestReadTable_ReadError(t *testing.T) {
	_, err := ReadTable(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read csv")
}
