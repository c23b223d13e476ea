package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconcileCSV(t *testing.T, ledger, statement string) (*Report, error) {
	t.Helper()
	return Reconcile(DefaultProfile(), analysisDay, mustTable(t, ledger), mustTable(t, statement))
}

func encode(t *testing.T, report *Report) string {
	t.Helper()
	b, err := EncodeCSV(report.Rows, DefaultProfile().Output)
	require.NoError(t, err)
	return string(b)
}

func TestReconcile_SumsAndMatches(t *testing.T) {
	report, err := reconcileCSV(t,
		"Qty,Inventory\n5,Cold-3\n2,Cold-3\n",
		"Date,Wallet Name,Quantity\n2025-04-30,Vault-3,10\n",
	)
	require.NoError(t, err)

	assert.Equal(t,
		"Wallet_Name,Bitwave_Balance,Anchorage_Balance,Difference\n"+
			"Wallet 3,7,10,3\n",
		encode(t, report))
	assert.Equal(t, 1, report.Matched())
	assert.Equal(t, 0, report.Reconciled())
}

func TestReconcile_UnmatchedWallet(t *testing.T) {
	report, err := reconcileCSV(t,
		"Qty,Inventory\n4,Node-9\n",
		"Date,Wallet Name,Quantity\n2025-04-29,Node-9,4\n",
	)
	require.NoError(t, err)

	assert.Equal(t,
		"Wallet_Name,Bitwave_Balance,Anchorage_Balance,Difference\n"+
			"Wallet 9,4,N/A,N/A\n",
		encode(t, report))
	assert.Equal(t, 1, report.Unmatched())
	require.Len(t, report.StatementRejected, 1)
	assert.Equal(t, RejectOtherDate, report.StatementRejected[0].Reason)
}

func TestReconcile_LedgerMissingInventory(t *testing.T) {
	report, err := reconcileCSV(t,
		"Qty,Asset\n4,BTC\n",
		"Date,Wallet Name,Quantity\n2025-04-30,Node-9,4\n",
	)

	assert.Nil(t, report)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, SourceLedger, schemaErr.Source)
	assert.Equal(t, []string{"Inventory"}, schemaErr.Missing)
}

func TestReconcile_LedgerValidatedFirst(t *testing.T) {
	_, err := reconcileCSV(t, "Foo\n", "Bar\n")

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, SourceLedger, schemaErr.Source)
}

func TestReconcile_StatementMissingColumn(t *testing.T) {
	_, err := reconcileCSV(t,
		"Qty,Inventory\n4,Node-9\n",
		"Date,Wallet,Quantity\n2025-04-30,Node-9,4\n",
	)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, SourceStatement, schemaErr.Source)
	assert.Equal(t, []string{"Wallet Name"}, schemaErr.Missing)
}

func TestReconcile_StatementOnlyWalletsExcluded(t *testing.T) {
	report, err := reconcileCSV(t,
		"Qty,Inventory\n1,A 1\n",
		"Date,Wallet Name,Quantity\n2025-04-30,B 1,1\n2025-04-30,B 2,9\n",
	)
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, WalletKey("Wallet 1"), report.Rows[0].Key)
	assert.True(t, report.Rows[0].Reconciled())
}

func TestReconcile_EveryLedgerWalletOnce(t *testing.T) {
	report, err := reconcileCSV(t,
		"Qty,Inventory\n1,A 2\n1,B 10\n1,C 2\n3,D 1\n",
		"Date,Wallet Name,Quantity\n2025-04-30,X 2,2\n2025-04-30,Y 2,1\n",
	)
	require.NoError(t, err)

	assert.Equal(t,
		"Wallet_Name,Bitwave_Balance,Anchorage_Balance,Difference\n"+
			"Wallet 1,3,N/A,N/A\n"+
			"Wallet 10,1,N/A,N/A\n"+
			"Wallet 2,2,3,1\n",
		encode(t, report))
}

func TestReconcile_EmptyResult(t *testing.T) {
	report, err := reconcileCSV(t,
		"Qty,Inventory\n0,A 1\n",
		"Date,Wallet Name,Quantity\n",
	)
	require.NoError(t, err)

	assert.True(t, report.Empty())
	assert.Equal(t, 1, report.LedgerRead)
	assert.Equal(t, 0, report.StatementRead)
	assert.Equal(t, "Wallet_Name,Bitwave_Balance,Anchorage_Balance,Difference\n", encode(t, report))
}

func TestReconcile_Idempotent(t *testing.T) {
	ledger := "Qty,Inventory\n1.25,Cold 7\n2,Vault 3\n0.75,Cold 7\n"
	statement := "Date,Wallet Name,Quantity\n4/30/2025,W-7,2\n2025-04-30T10:00:00Z,W-3,1.5\n"

	first, err := reconcileCSV(t, ledger, statement)
	require.NoError(t, err)
	second, err := reconcileCSV(t, ledger, statement)
	require.NoError(t, err)

	assert.Equal(t, encode(t, first), encode(t, second))
}

func TestReconcile_TruncatesAnalysisTime(t *testing.T) {
	report, err := Reconcile(DefaultProfile(),
		time.Date(2025, 4, 30, 18, 45, 0, 0, time.UTC),
		mustTable(t, "Qty,Inventory\n1,A 1\n"),
		mustTable(t, "Date,Wallet Name,Quantity\n2025-04-30,A 1,1\n"),
	)
	require.NoError(t, err)

	assert.Equal(t, "comparison_results_2025-04-30.csv", report.FileName())
	assert.Equal(t, 1, report.Reconciled())
}

func TestReconcile_NilTable(t *testing.T) {
	_, err := Reconcile(DefaultProfile(), analysisDay, nil, mustTable(t, "Date\n"))
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestReconcile_CustomProfile(t *testing.T) {
	p := DefaultProfile()
	p.Ledger.Quantity = "Amount"
	p.Ledger.Inventory = "Account"
	p.Output.Unmatched = "-"
	p.Output.Ledger = "Ledger"

	report, err := Reconcile(p, analysisDay,
		mustTable(t, "Amount,Account\n2,Acct 5\n"),
		mustTable(t, "Date,Wallet Name,Quantity\n"),
	)
	require.NoError(t, err)

	b, err := EncodeCSV(report.Rows, p.Output)
	require.NoError(t, err)
	assert.Equal(t, "Wallet_Name,Ledger,Anchorage_Balance,Difference\nWallet 5,2,-,-\n", string(b))
}

func TestReconcile_HugeExponentRejected(t *testing.T) {
	report, err := reconcileCSV(t,
		"Qty,Inventory\n1e40000000,Cold-3\n0.5,Cold-3\n",
		"Date,Wallet Name,Quantity\n2025-04-30,Vault-3,1e-40000000\n2025-04-30,Vault-3,1\n",
	)
	require.NoError(t, err)

	out := encode(t, report)
	assert.Equal(t,
		"Wallet_Name,Bitwave_Balance,Anchorage_Balance,Difference\n"+
			"Wallet 3,0.5,1,0.5\n",
		out)
	assert.Equal(t, map[RejectReason]int{RejectInvalidQuantity: 1}, CountRejections(report.LedgerRejected))
	assert.Equal(t, map[RejectReason]int{RejectInvalidQuantity: 1}, CountRejections(report.StatementRejected))
}

func TestReconcile_FormattedNumbersDroppedByDefault(t *testing.T) {
	ledger := "Qty,Inventory\n\"1,000\",Cold-3\n$5,Cold-3\n(5),Cold-3\n2,Cold-3\n"
	statement := "Date,Wallet Name,Quantity\n2025-04-30,Vault-3,\"1,002\"\n"

	report, err := reconcileCSV(t, ledger, statement)
	require.NoError(t, err)
	assert.Equal(t,
		"Wallet_Name,Bitwave_Balance,Anchorage_Balance,Difference\n"+
			"Wallet 3,2,N/A,N/A\n",
		encode(t, report))
	assert.Len(t, report.LedgerRejected, 3)

	p := DefaultProfile()
	p.Parsing.LenientNumbers = true
	report, err = Reconcile(p, analysisDay, mustTable(t, ledger), mustTable(t, statement))
	require.NoError(t, err)
	assert.Equal(t,
		"Wallet_Name,Bitwave_Balance,Anchorage_Balance,Difference\n"+
			"Wallet 3,1002,1002,0\n",
		encode(t, report))
}
