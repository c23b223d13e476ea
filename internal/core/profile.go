package core

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// LedgerColumns names the ledger export columns.
type LedgerColumns struct {
	Label     string `toml:"label"`
	Quantity  string `toml:"quantity"`
	Inventory string `toml:"inventory"`
}

// StatementColumns names the custodian statement columns.
type StatementColumns struct {
	Label    string `toml:"label"`
	Date     string `toml:"date"`
	Wallet   string `toml:"wallet"`
	Quantity string `toml:"quantity"`
}

// OutputColumns names the comparison CSV headers and the unmatched text.
type OutputColumns struct {
	Unmatched  string `toml:"unmatched"`
	Wallet     string `toml:"wallet"`
	Ledger     string `toml:"ledger"`
	Statement  string `toml:"statement"`
	Difference string `toml:"difference"`
}

// Header returns the output header row.
func (o OutputColumns) Header() []string {
	return []string{o.Wallet, o.Ledger, o.Statement, o.Difference}
}

// ParsingOptions relaxes how headers and cells are read. The zero value
// matches headers exactly, keeps labels as written and accepts only plain
// decimal or exponent quantities.
type ParsingOptions struct {
	LenientNumbers bool `toml:"lenient_numbers"` // "$1,000", "(5)", ="12" wrappers
	LooseHeaders   bool `toml:"loose_headers"`   // " qty " matches "Qty"
	TrimLabels     bool `toml:"trim_labels"`     // "Cold 3 " keys as "Wallet 3"
}

// Profile describes the two source layouts and the output layout.
type Profile struct {
	Ledger    LedgerColumns    `toml:"ledger"`
	Statement StatementColumns `toml:"statement"`
	Output    OutputColumns    `toml:"output"`
	Parsing   ParsingOptions   `toml:"parsing"`
}

// DefaultProfile matches the Bitwave balance report and the Anchorage statement.
func DefaultProfile() Profile {
	return Profile{
		Ledger: LedgerColumns{
			Label:     "Bitwave Balance File",
			Quantity:  "Qty",
			Inventory: "Inventory",
		},
		Statement: StatementColumns{
			Label:    "Anchorage Balance Statement",
			Date:     "Date",
			Wallet:   "Wallet Name",
			Quantity: "Quantity",
		},
		Output: OutputColumns{
			Unmatched:  "N/A",
			Wallet:     "Wallet_Name",
			Ledger:     "Bitwave_Balance",
			Statement:  "Anchorage_Balance",
			Difference: "Difference",
		},
	}
}

// LoadProfile reads a TOML profile. Keys absent from the file keep their
// DefaultProfile values. An empty path returns the default profile.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := toml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects profiles with blank column names.
func (p Profile) Validate() error {
	checks := []struct {
		key, value string
	}{
		{"ledger.quantity", p.Ledger.Quantity},
		{"ledger.inventory", p.Ledger.Inventory},
		{"statement.date", p.Statement.Date},
		{"statement.wallet", p.Statement.Wallet},
		{"statement.quantity", p.Statement.Quantity},
		{"output.wallet", p.Output.Wallet},
		{"output.ledger", p.Output.Ledger},
		{"output.statement", p.Output.Statement},
		{"output.difference", p.Output.Difference},
	}
	for _, c := range checks {
		if CleanCell(c.value) == "" {
			return fmt.Errorf("%s must not be empty", c.key)
		}
	}
	return nil
}

// LedgerSource returns the ledger table definition.
func (p Profile) LedgerSource() SourceDefinition {
	return SourceDefinition{
		Source:       SourceLedger,
		Label:        p.Ledger.Label,
		Columns:      []string{p.Ledger.Quantity, p.Ledger.Inventory},
		LooseHeaders: p.Parsing.LooseHeaders,
	}
}

// StatementSource returns the statement table definition.
func (p Profile) StatementSource() SourceDefinition {
	return SourceDefinition{
		Source:       SourceStatement,
		Label:        p.Statement.Label,
		Columns:      []string{p.Statement.Date, p.Statement.Wallet, p.Statement.Quantity},
		LooseHeaders: p.Parsing.LooseHeaders,
	}
}

// SourceDefinition looks up a definition by source key.
func (p Profile) SourceDefinition(src Source) (SourceDefinition, bool) {
	switch src {
	case SourceLedger:
		return p.LedgerSource(), true
	case SourceStatement:
		return p.StatementSource(), true
	default:
		return SourceDefinition{}, false
	}
}
