// Package cli implements the itemlist command-line tool.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/itemlist/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries the configuration resolved for the running command.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		source  string
		fixture string
		sqlite  string
	)
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "itemlist",
		Short:         "Sortable, responsive item table",
		Long:          "Work with the item collection shown by the itemlist server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The .env file is optional; real environment variables win.
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("load env file: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > default
			if cmd.Flags().Changed("source") {
				cfg.Source.Driver = strings.ToLower(source)
			}
			if cmd.Flags().Changed("fixture") {
				cfg.Source.FixturePath = fixture
			}
			if cmd.Flags().Changed("sqlite") {
				cfg.Source.SQLitePath = sqlite
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			a.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Item source driver (yaml, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&fixture, "fixture", "", "YAML fixture read by the yaml driver")
	rootCmd.PersistentFlags().StringVar(&sqlite, "sqlite", "", "Database file used by the sqlite driver")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTUICmd(a))
	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newResetCmd(a))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "itemlist version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
