package core

import "sort"

// Match left-joins the statement aggregates onto the ledger aggregates.
//
// Every ledger wallet appears exactly once. Statement wallets without a ledger
// counterpart are dropped: the ledger is the wallet universe under audit.
// Difference is statement minus ledger, or Unmatched when the statement has
// no entry for the wallet.
//
// Rows are ordered by plain string comparison of the full key, so
// "Wallet 10" sorts before "Wallet 2".
func Match(ledger, statement []WalletAggregate) []ComparisonRow {
	stmtByKey := make(map[WalletKey]WalletAggregate, len(statement))
	for _, agg := range statement {
		stmtByKey[agg.Key] = agg
	}

	rows := make([]ComparisonRow, 0, len(ledger))
	for _, l := range ledger {
		row := ComparisonRow{
			Key:              l.Key,
			LedgerBalance:    l.Balance,
			StatementBalance: Unmatched,
			Difference:       Unmatched,
		}
		if s, ok := stmtByKey[l.Key]; ok {
			row.StatementBalance = Matched(s.Balance)
			row.Difference = Matched(s.Balance.Sub(l.Balance))
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Key < rows[j].Key
	})

	return rows
}
