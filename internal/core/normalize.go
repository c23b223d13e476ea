package core

// normalize.go turns raw table rows into typed, keyed rows.
//
// Unusable rows are never fatal. Each parse function returns either a clean
// row or the reason it was excluded; excluded rows are collected so a run can
// report exactly what was dropped and why.

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// cells reads one table's cells under a set of parsing options.
type cells struct {
	t    *Table
	opts ParsingOptions
}

// column resolves a header to its position, or -1 when absent.
func (c cells) column(name string) int {
	pos, ok := c.t.Column(name, c.opts.LooseHeaders)
	if !ok {
		return -1
	}
	return pos
}

// quantity returns the trimmed cell text and its parsed value.
func (c cells) quantity(i, pos int) (string, decimal.Decimal, bool) {
	raw := strings.TrimSpace(c.t.Value(i, pos))
	if c.opts.LenientNumbers {
		raw = CleanCell(raw)
		qty, ok := ParseQuantityLenient(raw)
		return raw, qty, ok
	}
	qty, ok := ParseQuantity(raw)
	return raw, qty, ok
}

// label returns a wallet label. Surrounding spaces are kept unless
// TrimLabels is set, so "Cold 3 " carries no trailing wallet number.
func (c cells) label(i, pos int) string {
	if c.opts.TrimLabels {
		return CleanCell(c.t.Value(i, pos))
	}
	return c.t.Value(i, pos)
}

func (c cells) date(i, pos int) string {
	return CleanCell(c.t.Value(i, pos))
}

// ledgerPositions holds resolved ledger column positions.
type ledgerPositions struct {
	quantity, inventory int
}

// parseLedgerRow parses row i of a ledger table.
func parseLedgerRow(c cells, i int, pos ledgerPositions) (LedgerRow, RejectReason, bool) {
	rawQty, qty, ok := c.quantity(i, pos.quantity)
	if rawQty == "" {
		return LedgerRow{}, RejectMissingQuantity, false
	}
	if !ok {
		return LedgerRow{}, RejectInvalidQuantity, false
	}

	label := c.label(i, pos.inventory)
	if label == "" {
		return LedgerRow{}, RejectMissingInventory, false
	}

	// Zero balances carry nothing to reconcile.
	if qty.IsZero() {
		return LedgerRow{}, RejectZeroQuantity, false
	}

	key, ok := KeyFromLabel(label)
	if !ok {
		return LedgerRow{}, RejectUnkeyable, false
	}

	return LedgerRow{
		Line:           c.t.Lines[i],
		Quantity:       qty,
		InventoryLabel: label,
		Key:            key,
	}, "", true
}

// statementPositions holds resolved statement column positions.
type statementPositions struct {
	date, wallet, quantity int
}

// parseStatementRow parses row i of a statement table, keeping only rows
// dated on the analysis day.
func parseStatementRow(c cells, i int, pos statementPositions, day time.Time) (StatementRow, RejectReason, bool) {
	rawDate := c.date(i, pos.date)
	if rawDate == "" {
		return StatementRow{}, RejectMissingDate, false
	}
	date, ok := ParseDate(rawDate)
	if !ok {
		return StatementRow{}, RejectInvalidDate, false
	}

	label := c.label(i, pos.wallet)
	if label == "" {
		return StatementRow{}, RejectMissingWallet, false
	}

	rawQty, qty, ok := c.quantity(i, pos.quantity)
	if rawQty == "" {
		return StatementRow{}, RejectMissingQuantity, false
	}
	if !ok {
		return StatementRow{}, RejectInvalidQuantity, false
	}

	if !SameDay(date, day) {
		return StatementRow{}, RejectOtherDate, false
	}

	key, ok := KeyFromLabel(label)
	if !ok {
		return StatementRow{}, RejectUnkeyable, false
	}

	return StatementRow{
		Line:        c.t.Lines[i],
		Date:        date,
		WalletLabel: label,
		Quantity:    qty,
		Key:         key,
	}, "", true
}

// NormalizeLedger returns the usable ledger rows and the rejected ones.
func NormalizeLedger(t *Table, cols LedgerColumns, opts ParsingOptions) ([]LedgerRow, []RejectedRow) {
	var rows []LedgerRow
	var rejected []RejectedRow

	c := cells{t: t, opts: opts}
	pos := ledgerPositions{
		quantity:  c.column(cols.Quantity),
		inventory: c.column(cols.Inventory),
	}

	for i := range t.Rows {
		row, reason, ok := parseLedgerRow(c, i, pos)
		if !ok {
			rejected = append(rejected, RejectedRow{
				Source: SourceLedger,
				Line:   t.Lines[i],
				Reason: reason,
				Data:   t.Rows[i],
			})
			continue
		}
		rows = append(rows, row)
	}

	return rows, rejected
}

// NormalizeStatement returns the usable statement rows for day and the rejected ones.
func NormalizeStatement(t *Table, cols StatementColumns, opts ParsingOptions, day time.Time) ([]StatementRow, []RejectedRow) {
	var rows []StatementRow
	var rejected []RejectedRow

	c := cells{t: t, opts: opts}
	pos := statementPositions{
		date:     c.column(cols.Date),
		wallet:   c.column(cols.Wallet),
		quantity: c.column(cols.Quantity),
	}

	for i := range t.Rows {
		row, reason, ok := parseStatementRow(c, i, pos, day)
		if !ok {
			rejected = append(rejected, RejectedRow{
				Source: SourceStatement,
				Line:   t.Lines[i],
				Reason: reason,
				Data:   t.Rows[i],
			})
			continue
		}
		rows = append(rows, row)
	}

	return rows, rejected
}
