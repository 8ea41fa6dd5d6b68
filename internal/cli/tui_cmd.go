package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/itemlist/internal/logging"
	"github.com/JonMunkholm/itemlist/internal/store"
	"github.com/JonMunkholm/itemlist/internal/tui"
)

const defaultTUILog = "itemlist.log"

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse items in the terminal",
		Long: `Shows the item table full screen. The terminal width drives which columns
are hidden. The identifier of a selected row is copied to the clipboard and
printed on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg

			// bubbletea owns the terminal, so logs always go to a file.
			logPath := cfg.Logging.File
			if logPath == "" {
				logPath = defaultTUILog
			}
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			logging.Setup(f, cfg.Logging.Level, cfg.Logging.Format)

			src, err := store.Open(context.Background(), cfg.Source)
			if err != nil {
				return fmt.Errorf("open item source: %w", err)
			}
			defer src.Close()

			m := tui.New(tui.Options{
				Source:      src,
				LoadTimeout: cfg.Source.LoadTimeout,
				Location:    cfg.Display.Location(),
				CellWidth:   cfg.Display.CellWidth,
			})
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run terminal ui: %w", err)
			}

			if id := m.Selected(); id != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
