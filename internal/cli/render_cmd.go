package cli

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/store"
	"github.com/JonMunkholm/itemlist/internal/web/templates"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		width float64
		sort  string
		full  bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the item table as HTML",
		Long: `Loads the items and writes the table partial to stdout, as the server would
render it for a surface of the given width. Without --width no column is hidden.`,
		Example: `  itemlist render --width 700 --sort updatedOn:desc
  itemlist render --full > items.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			ctx := context.Background()

			src, err := store.Open(ctx, cfg.Source)
			if err != nil {
				return fmt.Errorf("open item source: %w", err)
			}
			defer src.Close()

			items, err := store.Load(ctx, src, cfg.Source.LoadTimeout)
			if err != nil {
				return err
			}

			table := itemlist.NewTable(itemlist.Columns(cfg.Display.Location()), nil)
			table.SetItems(items)
			if sort != "" {
				if err := table.SetSort(itemlist.ParseSortState(sort)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("width") {
				if math.IsNaN(width) || math.IsInf(width, 0) {
					return fmt.Errorf("invalid width %v", width)
				}
				table.Resize(itemlist.Measured(width))
			}

			props := templates.TableProps{ViewID: uuid.NewString(), View: table.View()}
			if full {
				return templates.Page("Items", props).Render(ctx, cmd.OutOrStdout())
			}
			if err := templates.Table(props).Render(ctx, cmd.OutOrStdout()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "Measured surface width in CSS pixels")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort column, optionally suffixed with :asc or :desc")
	cmd.Flags().BoolVar(&full, "full", false, "Render a complete HTML page instead of the table partial")

	return cmd
}
