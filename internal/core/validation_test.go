package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHeaders(t *testing.T) {
	p := DefaultProfile()

	t.Run("ledger ok", func(t *testing.T) {
		tbl := mustTable(t, "Asset,Qty,Inventory\n")
		assert.NoError(t, ValidateHeaders(p.LedgerSource(), tbl))
	})

	t.Run("header names are exact by default", func(t *testing.T) {
		tbl := mustTable(t, "qty,INVENTORY\n5,Cold-3\n")
		err := ValidateHeaders(p.LedgerSource(), tbl)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, []string{"Qty", "Inventory"}, schemaErr.Missing)
	})

	t.Run("padded header is not the column", func(t *testing.T) {
		tbl := mustTable(t, "Date,Wallet Name ,Quantity\n")
		err := ValidateHeaders(p.StatementSource(), tbl)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, []string{"Wallet Name"}, schemaErr.Missing)
	})

	t.Run("loose headers ignore case and spacing", func(t *testing.T) {
		loose := p
		loose.Parsing.LooseHeaders = true
		tbl := mustTable(t, " date ,WALLET NAME,\"Quantity\"\n")
		assert.NoError(t, ValidateHeaders(loose.StatementSource(), tbl))
	})

	t.Run("ledger missing inventory", func(t *testing.T) {
		tbl := mustTable(t, "Qty,Asset\n5,BTC\n")
		err := ValidateHeaders(p.LedgerSource(), tbl)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, SourceLedger, schemaErr.Source)
		assert.Equal(t, []string{"Inventory"}, schemaErr.Missing)
		assert.Equal(t, []string{"Qty", "Inventory"}, schemaErr.Required)
		assert.Contains(t, err.Error(), "Inventory")
	})

	t.Run("statement missing everything", func(t *testing.T) {
		tbl := mustTable(t, "Foo\n")
		err := ValidateHeaders(p.StatementSource(), tbl)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, SourceStatement, schemaErr.Source)
		assert.Equal(t, []string{"Date", "Wallet Name", "Quantity"}, schemaErr.Missing)
	})
}

func TestSchemaError_UserText(t *testing.T) {
	p := DefaultProfile()

	ledger := &SchemaError{Label: p.Ledger.Label, Required: []string{"Qty", "Inventory"}}
	assert.Equal(t, "Bitwave Balance File must contain 'Qty' and 'Inventory' columns.", ledger.UserText())

	stmt := &SchemaError{Label: p.Statement.Label, Required: []string{"Date", "Wallet Name", "Quantity"}}
	assert.Equal(t, "Anchorage Balance Statement must contain 'Date', 'Wallet Name', and 'Quantity' columns.", stmt.UserText())
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "", joinList(nil))
	assert.Equal(t, "a", joinList([]string{"a"}))
	assert.Equal(t, "a and b", joinList([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", joinList([]string{"a", "b", "c"}))
}
