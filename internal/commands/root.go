package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/propledger/internal/buildinfo"
	"github.com/cleared-dev/propledger/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "propledger",
		Short:   "Property-management accounting ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to the config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file loaded before the config")

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))

	return rootCmd
}
