package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/JonMunkholm/walletrecon/internal/config"
	"github.com/JonMunkholm/walletrecon/internal/core"
)

const longHelp = `Compare a Bitwave balance export against an Anchorage balance statement
for one analysis date.

Ledger quantities are summed per wallet number (the trailing digits of the
Inventory label) and matched to the statement's same-day quantities. Every
ledger wallet appears in the output; wallets missing from the statement show
N/A instead of a number.

Defaults come from RECON_DEFAULT_DATE, RECON_PROFILE, LOG_LEVEL and LOG_FORMAT;
flags override them.`

var exampleUsage = strings.TrimSpace(`
  reconcile --date 2025-04-30 --ledger bitwave.csv --statement anchorage.csv
  reconcile --ledger bitwave.csv --statement anchorage.csv --out - > results.csv
  reconcile --ledger bitwave.csv --statement anchorage.csv --rejects ./rejected --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the command and returns the process exit code.
func execute(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), userText(err))
		return 1
	}
	return 0
}

// userText prefers the coded user message; unmatched errors print as-is.
func userText(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return "error: " + err.Error()
}

func newRootCommand() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "reconcile",
		Short:         "Compare ledger wallet balances against a custodian statement",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			opts.applyConfig(cfg, changed)

			return run(cmd.Context(), opts, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := root.Flags()
	f.StringVar(&opts.date, "date", "", "analysis date, YYYY-MM-DD (default: RECON_DEFAULT_DATE)")
	f.StringVar(&opts.ledger, "ledger", "", "Bitwave balance file (CSV)")
	f.StringVar(&opts.statement, "statement", "", "Anchorage balance statement (CSV)")
	f.StringVarP(&opts.out, "out", "o", "", `output CSV path, "-" for stdout (default: comparison_results_<date>.csv)`)
	f.StringVar(&opts.rejects, "rejects", "", "directory to write skipped rows to")
	f.StringVar(&opts.profile, "profile", "", "TOML column profile (default: RECON_PROFILE)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL)")
	f.StringVar(&opts.logFormat, "log-format", "", "text or json (default: LOG_FORMAT)")

	_ = root.MarkFlagRequired("ledger")
	_ = root.MarkFlagRequired("statement")

	return root
}
