package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/propledger/internal/accounts"
	"github.com/cleared-dev/propledger/internal/config"
)

func newInitCommand(opts *globalOptions) *cobra.Command {
	var chartPath string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a config file and a ledger seeded with a chart of accounts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), opts, absDir, chartPath)
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "CSV chart of accounts (account_name,account_type) to seed instead of the default")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, opts *globalOptions, dir, chartPath string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Keep an existing config so init can be rerun to top up the chart.
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
		if err := config.Save(cfgPath, config.Default()); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking config: %w", err)
	}

	rows := accounts.DefaultChart()
	if chartPath != "" {
		f, err := os.Open(chartPath)
		if err != nil {
			return fmt.Errorf("opening chart: %w", err)
		}
		rows, err = accounts.ReadChart(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	a, err := openApp(&globalOptions{configPath: cfgPath, envFile: opts.envFile})
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.accounts.Seed(ctx, rows)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Initialized propledger ledger at %s (%d accounts created)\n", a.cfg.Database.Path, created)
	return nil
}
