package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies one side of the comparison.
type Source string

const (
	SourceLedger    Source = "ledger"
	SourceStatement Source = "statement"
)

// SourceDefinition describes the columns a source table must carry.
type SourceDefinition struct {
	Source       Source
	Label        string   // Display name: "Bitwave Balance File"
	Columns      []string // Required header names, in declaration order
	LooseHeaders bool     // Match headers ignoring case, spacing and quotes
}

// HeaderIndex maps cleaned, lowercased column names to their position in the CSV row.
type HeaderIndex map[string]int

// WalletKey is the canonical "Wallet {n}" identifier shared by both sources.
type WalletKey string

// LedgerRow is a cleaned row of the ledger export.
type LedgerRow struct {
	Line           int
	Quantity       decimal.Decimal
	InventoryLabel string
	Key            WalletKey
}

// StatementRow is a cleaned row of the custodian statement.
type StatementRow struct {
	Line        int
	Date        time.Time
	WalletLabel string
	Quantity    decimal.Decimal
	Key         WalletKey
}

func (r LedgerRow) WalletKey() WalletKey       { return r.Key }
func (r LedgerRow) Amount() decimal.Decimal    { return r.Quantity }
func (r StatementRow) WalletKey() WalletKey    { return r.Key }
func (r StatementRow) Amount() decimal.Decimal { return r.Quantity }

// WalletAggregate is the summed balance of every row sharing a key.
type WalletAggregate struct {
	Key     WalletKey
	Balance decimal.Decimal
	Entries int // Number of rows folded into Balance
}

// Balance is a quantity that may be absent. A zero Balance is unmatched,
// which keeps "no counterpart" distinct from a reconciled zero.
type Balance struct {
	Amount  decimal.Decimal
	Matched bool
}

// Matched wraps an amount that has a counterpart.
func Matched(d decimal.Decimal) Balance {
	return Balance{Amount: d, Matched: true}
}

// Unmatched is the sentinel for a missing counterpart.
var Unmatched = Balance{}

// Text renders the balance as plain decimal text, or sentinel when unmatched.
func (b Balance) Text(sentinel string) string {
	if !b.Matched {
		return sentinel
	}
	return b.Amount.String()
}

// ComparisonRow is one line of the reconciliation output.
type ComparisonRow struct {
	Key              WalletKey
	LedgerBalance    decimal.Decimal
	StatementBalance Balance
	Difference       Balance
}

// Reconciled reports whether both sides are present and agree exactly.
func (r ComparisonRow) Reconciled() bool {
	return r.Difference.Matched && r.Difference.Amount.IsZero()
}

// RejectReason explains why a source row was excluded.
type RejectReason string

const (
	RejectMissingQuantity  RejectReason = "missing quantity"
	RejectInvalidQuantity  RejectReason = "invalid quantity"
	RejectZeroQuantity     RejectReason = "zero quantity"
	RejectMissingInventory RejectReason = "missing inventory label"
	RejectMissingWallet    RejectReason = "missing wallet label"
	RejectMissingDate      RejectReason = "missing date"
	RejectInvalidDate      RejectReason = "invalid date"
	RejectOtherDate        RejectReason = "outside analysis date"
	RejectUnkeyable        RejectReason = "no wallet number"
)

// RejectedRow contains information about a row that was excluded.
type RejectedRow struct {
	Source Source
	Line   int
	Reason RejectReason
	Data   []string
}

// CountRejections tallies rejected rows by reason.
func CountRejections(rows []RejectedRow) map[RejectReason]int {
	counts := make(map[RejectReason]int)
	for _, r := range rows {
		counts[r.Reason]++
	}
	return counts
}

// Report contains the final result of one reconciliation run.
type Report struct {
	RunID             string
	AnalysisDate      time.Time
	Rows              []ComparisonRow
	LedgerHeader      []string
	StatementHeader   []string
	LedgerRead        int // Data rows read from the ledger table
	StatementRead     int // Data rows read from the statement table
	LedgerRejected    []RejectedRow
	StatementRejected []RejectedRow
	Duration          time.Duration
}

// Empty reports whether no row survived to the output.
func (r *Report) Empty() bool {
	return len(r.Rows) == 0
}

// Matched returns the number of ledger wallets found in the statement.
func (r *Report) Matched() int {
	n := 0
	for _, row := range r.Rows {
		if row.StatementBalance.Matched {
			n++
		}
	}
	return n
}

// Unmatched returns the number of ledger wallets missing from the statement.
func (r *Report) Unmatched() int {
	return len(r.Rows) - r.Matched()
}

// Reconciled returns the number of wallets whose balances agree exactly.
func (r *Report) Reconciled() int {
	n := 0
	for _, row := range r.Rows {
		if row.Reconciled() {
			n++
		}
	}
	return n
}

// FileName returns the download name for the comparison CSV.
func (r *Report) FileName() string {
	return "comparison_results_" + r.AnalysisDate.Format(DateLayout) + ".csv"
}
