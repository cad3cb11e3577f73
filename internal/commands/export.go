package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/propledger/internal/accounts"
	"github.com/cleared-dev/propledger/internal/journal"
	"github.com/cleared-dev/propledger/internal/report"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export ledger data as CSV",
	}
	exportCmd.AddCommand(newExportLedgerCommand(opts))
	exportCmd.AddCommand(newExportAccountsCommand(opts))
	return exportCmd
}

func newExportLedgerCommand(opts *globalOptions) *cobra.Command {
	var dates dateRange
	var accountID int64
	var output string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Write the general ledger, one row per entry, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := dates.parse()
			if err != nil {
				return err
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.reports.GeneralLedger(cmd.Context(), report.LedgerFilter{
				Start:     start,
				End:       end,
				AccountID: accountID,
				Order:     journal.Order{Key: journal.SortByDate},
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return journal.WriteTransactions(w, txns)
			})
		},
	}

	dates.register(cmd)
	cmd.Flags().Int64Var(&accountID, "account", 0, "only transactions touching this account id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func newExportAccountsCommand(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Write the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.accounts.Export(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return accounts.WriteChart(w, rows)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

// writeOutput runs write against path, or stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
