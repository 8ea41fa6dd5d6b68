package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/itemlist/internal/config"
	"github.com/JonMunkholm/itemlist/internal/store"
)

// resetTimeout bounds the delete.
const resetTimeout = 30 * time.Second

func newResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every item from the database",
		Long:  "Removes all items from the configured sqlite or postgres source. This cannot be undone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to delete items without --yes")
			}

			srcCfg := a.cfg.Source
			if srcCfg.Driver == config.DriverYAML {
				return fmt.Errorf("driver %q has no stored items to delete", srcCfg.Driver)
			}

			ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
			defer cancel()

			src, err := store.Open(ctx, srcCfg)
			if err != nil {
				return fmt.Errorf("open item source: %w", err)
			}
			defer src.Close()

			r, ok := src.(store.Resetter)
			if !ok {
				return fmt.Errorf("driver %q cannot delete items", srcCfg.Driver)
			}
			n, err := r.DeleteAll(ctx)
			if err != nil {
				return fmt.Errorf("reset: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d items deleted from %s\n", n, srcCfg.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")

	return cmd
}
