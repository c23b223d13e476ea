// Package core provides the business logic for wallet balance reconciliation.
//
// This package compares a custody ledger export against a custodian wallet
// statement for one analysis date. It holds no state between runs and is
// independent of any UI or transport layer; the web handlers, the CLI and
// the tests all drive the same functions.
//
// # Pipeline
//
//  1. [ParseTable] reads a CSV into a header and rows (BOM and invalid UTF-8 cleaned)
//  2. [ValidateHeaders] checks required columns, failing with a [*SchemaError]
//  3. [NormalizeLedger] and [NormalizeStatement] parse rows, collecting rejections
//  4. [Aggregate] sums quantities per wallet key
//  5. [Match] left-joins the statement onto the ledger and computes differences
//
// [Reconcile] composes steps 2-5. [Service.Reconcile] adds stream reading,
// size limits, a concurrency limiter, run IDs and logging.
//
// # Wallet Keys
//
// Both sources name wallets in free text. The trailing digit run of a label
// is the join key, rendered as "Wallet {n}":
//
//	"Cold Storage 7" -> "Wallet 7"
//	"Vault-007"      -> "Wallet 007"
//	"Main Wallet"    -> rejected (no wallet number)
//
// # Unmatched Wallets
//
// A ledger wallet with no same-day statement entry keeps its row. Its
// statement balance and difference are [Unmatched], written as N/A by
// default, never as 0.
//
// # Column Profiles
//
// Column names, table labels, output headers and the unmatched text come from
// a [Profile]. [DefaultProfile] matches the Bitwave balance report and the
// Anchorage statement; [LoadProfile] overlays a TOML file on top of it.
//
// By default headers must match exactly, labels are used as written and
// quantities must be plain decimal or exponent numbers. [ParsingOptions]
// loosens each of these for hand-edited spreadsheets.
package core
