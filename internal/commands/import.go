package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/propledger/internal/journal"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import ledger data from CSV",
	}
	importCmd.AddCommand(newImportLedgerCommand(opts))
	return importCmd
}

func newImportLedgerCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <file.csv>",
		Short: "Submit every transaction in a ledger CSV (as written by export ledger)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return runImportLedger(cmd.Context(), cmd.OutOrStdout(), a, args[0])
		},
	}
}

// runImportLedger reads the whole file before submitting anything and
// stops at the first rejected transaction.
func runImportLedger(ctx context.Context, out io.Writer, a *app, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	drafts, err := journal.ReadDrafts(f)
	f.Close()
	if err != nil {
		return err
	}

	for i, d := range drafts {
		txn, err := a.journal.Submit(ctx, d)
		if err != nil {
			return fmt.Errorf("transaction %d of %d (%q): %w", i+1, len(drafts), d.Description, err)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", txn.ID, txn.Date.Format("2006-01-02"), txn.Description)
	}
	fmt.Fprintf(out, "Imported %d transactions\n", len(drafts))
	return nil
}
