package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/walletrecon/internal/config"
	"github.com/JonMunkholm/walletrecon/internal/core"
	"github.com/JonMunkholm/walletrecon/internal/logging"
)

// options are the resolved command-line settings.
type options struct {
	date      string
	ledger    string
	statement string
	out       string
	rejects   string
	profile   string
	logLevel  string
	logFormat string
}

// applyConfig fills options the user did not set on the command line.
func (o *options) applyConfig(cfg *config.Config, changed map[string]bool) {
	if !changed["date"] {
		o.date = cfg.Recon.DefaultDate
	}
	if !changed["profile"] {
		o.profile = cfg.Recon.ProfilePath
	}
	if !changed["log-level"] {
		o.logLevel = cfg.Logging.Level
	}
	if !changed["log-format"] {
		o.logFormat = cfg.Logging.Format
	}
}

// run executes one reconciliation. Logs go to stderr; stdout only ever
// carries the comparison CSV.
func run(ctx context.Context, opts options, cfg *config.Config, stdout, stderr io.Writer) error {
	logging.SetupWriter(stderr, opts.logLevel, opts.logFormat)

	day, err := core.ParseAnalysisDate(opts.date)
	if err != nil {
		return err
	}
	if opts.ledger == "" || opts.statement == "" {
		return core.ErrMissingInput
	}

	profile, err := core.LoadProfile(opts.profile)
	if err != nil {
		return err
	}
	service := core.NewServiceWithProfile(profile, cfg)

	ledger, err := os.Open(opts.ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	statement, err := os.Open(opts.statement)
	if err != nil {
		return fmt.Errorf("open statement: %w", err)
	}
	defer statement.Close()

	report, err := service.Reconcile(ctx, core.Request{
		AnalysisDate:  day,
		Ledger:        ledger,
		LedgerName:    filepath.Base(opts.ledger),
		Statement:     statement,
		StatementName: filepath.Base(opts.statement),
	})
	if err != nil {
		return err
	}

	if opts.rejects != "" {
		if err := writeRejects(opts.rejects, report); err != nil {
			return err
		}
	}

	fmt.Fprintf(stderr, "Comparison Results as of %s: %d wallets, %d matched, %d unmatched, %d reconciled\n",
		day.Format(core.DateLayout), len(report.Rows), report.Matched(), report.Unmatched(), report.Reconciled())

	if report.Empty() {
		fmt.Fprintln(stderr, "No wallets to compare; no file written.")
		return nil
	}

	if opts.out == "-" {
		return core.WriteCSV(stdout, report.Rows, profile.Output)
	}

	path := opts.out
	if path == "" {
		path = report.FileName()
	}
	if err := writeFile(path, func(w io.Writer) error {
		return core.WriteCSV(w, report.Rows, profile.Output)
	}); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Wrote %s\n", path)
	return nil
}

// writeRejects writes one skipped-rows file per source that has rejections.
func writeRejects(dir string, report *core.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create rejects dir: %w", err)
	}

	sets := []struct {
		name     string
		header   []string
		rejected []core.RejectedRow
	}{
		{"ledger_rejected.csv", report.LedgerHeader, report.LedgerRejected},
		{"statement_rejected.csv", report.StatementHeader, report.StatementRejected},
	}
	for _, set := range sets {
		if len(set.rejected) == 0 {
			continue
		}
		err := writeFile(filepath.Join(dir, set.name), func(w io.Writer) error {
			return core.WriteRejectedCSV(w, set.header, set.rejected)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and hands it to write, closing it on every path.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
