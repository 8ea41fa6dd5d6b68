package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/itemlist/internal/config"
	"github.com/JonMunkholm/itemlist/internal/store"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a YAML or CSV fixture into the database",
		Long: `Reads items from a YAML fixture or a CSV export (by .csv extension) and
upserts them by id into the configured database source. The yaml driver has no
database, so it falls back to sqlite.`,
		Example: `  itemlist import items.yaml --sqlite items.db
  itemlist import export.csv --sqlite items.db
  ITEMS_SOURCE=postgres DATABASE_URL=postgres://... itemlist import items.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := store.ReadItemsFile(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d items parsed from %s\n", len(items), args[0])
				return nil
			}

			srcCfg := a.cfg.Source
			if srcCfg.Driver == config.DriverYAML {
				srcCfg.Driver = config.DriverSQLite
			}

			ctx := context.Background()
			src, err := store.Open(ctx, srcCfg)
			if err != nil {
				return fmt.Errorf("open item source: %w", err)
			}
			defer src.Close()

			w, ok := src.(store.Writer)
			if !ok {
				return fmt.Errorf("driver %q cannot store items", srcCfg.Driver)
			}
			if err := w.PutItems(ctx, items); err != nil {
				return fmt.Errorf("import: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d items imported into %s\n", len(items), srcCfg.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate the fixture without writing")

	return cmd
}
