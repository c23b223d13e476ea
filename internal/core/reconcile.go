package core

import "time"

// Reconcile runs validation, normalization, aggregation and matching over two
// parsed tables for one analysis day. It holds no state; identical inputs
// produce identical reports (RunID and Duration aside, which callers set).
//
// The ledger header is validated before the statement header. A *SchemaError
// stops the run before any row is read.
func Reconcile(p Profile, day time.Time, ledger, statement *Table) (*Report, error) {
	if ledger == nil || statement == nil {
		return nil, ErrMissingInput
	}

	if err := ValidateHeaders(p.LedgerSource(), ledger); err != nil {
		return nil, err
	}
	if err := ValidateHeaders(p.StatementSource(), statement); err != nil {
		return nil, err
	}

	day = DayOf(day)

	ledgerRows, ledgerRejected := NormalizeLedger(ledger, p.Ledger, p.Parsing)
	stmtRows, stmtRejected := NormalizeStatement(statement, p.Statement, p.Parsing, day)

	rows := Match(Aggregate(ledgerRows), Aggregate(stmtRows))

	return &Report{
		AnalysisDate:      day,
		Rows:              rows,
		LedgerHeader:      ledger.Header,
		StatementHeader:   statement.Header,
		LedgerRead:        ledger.Len(),
		StatementRead:     statement.Len(),
		LedgerRejected:    ledgerRejected,
		StatementRejected: stmtRejected,
	}, nil
}
