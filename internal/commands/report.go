package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/propledger/internal/report"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Ledger reports",
	}
	reportCmd.AddCommand(newIncomeExpenseCommand(opts))
	return reportCmd
}

func newIncomeExpenseCommand(opts *globalOptions) *cobra.Command {
	var dates dateRange
	var granularity string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "income-expense",
		Short: "Print income and expense per period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := report.ParseGranularity(granularity)
			if err != nil {
				return err
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return runIncomeExpense(cmd.Context(), cmd.OutOrStdout(), a, dates, g, asJSON)
		},
	}

	dates.register(cmd)
	cmd.Flags().StringVar(&granularity, "granularity", string(report.Monthly), "daily, weekly, monthly, quarterly or yearly")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func runIncomeExpense(ctx context.Context, out io.Writer, a *app, dates dateRange, g report.Granularity, asJSON bool) error {
	start, end, err := dates.parse()
	if err != nil {
		return err
	}

	series, err := a.reports.IncomeExpenseSeries(ctx, start, end, g)
	if err != nil {
		return err
	}

	if asJSON {
		if series == nil {
			series = []report.Period{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PERIOD\tINCOME\tEXPENSE\tNET\t")
	for _, p := range series {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", p.Period,
			p.Income.StringFixed(2), p.Expense.StringFixed(2), p.Income.Sub(p.Expense).StringFixed(2))
	}
	income, expense := report.Totals(series)
	fmt.Fprintf(tw, "TOTAL\t%s\t%s\t%s\t\n",
		income.StringFixed(2), expense.StringFixed(2), income.Sub(expense).StringFixed(2))
	return tw.Flush()
}
