// Package templates holds the templ components for the reconciliation UI.
// Edit the .templ sources and regenerate with `templ generate`.
package templates

import "fmt"

// ResultRow is one rendered comparison line.
type ResultRow struct {
	Wallet     string
	Ledger     string
	Statement  string
	Difference string
	Matched    bool
	Reconciled bool
}

// RejectionLine is a per-source, per-reason rejection count.
type RejectionLine struct {
	Source string
	Reason string
	Count  int
}

// ResultsView is everything the results page shows.
type ResultsView struct {
	AnalysisDate  string
	RunID         string
	Header        []string
	Rows          []ResultRow
	FileName      string
	DownloadHref  string
	LedgerRead    int
	StatementRead int
	Matched       int
	Unmatched     int
	Reconciled    int
	Rejections    []RejectionLine
}

// Summary is the one-line run summary above the table.
func (v ResultsView) Summary() string {
	return fmt.Sprintf("%d wallets: %d matched, %d unmatched, %d reconciled. Rows read: ledger %d, statement %d.",
		len(v.Rows), v.Matched, v.Unmatched, v.Reconciled, v.LedgerRead, v.StatementRead)
}
