// Package tui renders the item table in a terminal with bubbletea.
//
// The terminal window is the rendering surface: its width in cells times the
// configured cell width is fed to the table as the measured width, so the
// same thresholds hide the same columns as in the browser.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/store"
)

const (
	minSummaryWidth = 12
	chromeHeight    = 6 // title, panel border, status and hint lines
)

// fixed terminal widths per column; summary takes what is left.
var cellWidths = map[string]int{
	itemlist.ColType:      10,
	itemlist.ColIsPrivate: 9,
	itemlist.ColStatus:    10,
	itemlist.ColService:   12,
	itemlist.ColAuthor:    12,
	itemlist.ColCreatedOn: 19,
	itemlist.ColUpdatedOn: 19,
}

// Options configures a Model.
type Options struct {
	Source      store.Source
	LoadTimeout time.Duration
	Location    *time.Location
	CellWidth   float64            // width units per terminal cell
	Copy        func(string) error // defaults to the system clipboard
}

type itemsMsg struct {
	items []itemlist.Item
	err   error
}

// Model is the bubbletea model for the item table.
type Model struct {
	opts   Options
	table  *itemlist.Table
	grid   table.Model
	styles styles
	view   itemlist.View
	detail detailRenderer

	focus    int // index into the visible headers
	width    int
	height   int
	selected string
	status   string
	err      error
	loading  bool

	showDetail bool
}

// New creates a Model. Call Init (or run it with tea.NewProgram) to load items.
func New(opts Options) *Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 8
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	m := &Model{
		opts:   opts,
		styles: newStyles(),
		grid: table.New(
			table.WithFocused(true),
			table.WithHeight(10),
			table.WithStyles(tableStyles()),
		),
	}
	m.table = itemlist.NewTable(itemlist.Columns(opts.Location), m.onSelect)
	m.sync()
	return m
}

// Init starts the first load.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	src, timeout := m.opts.Source, m.opts.LoadTimeout
	return func() tea.Msg {
		items, err := store.Load(context.Background(), src, timeout)
		return itemsMsg{items: items, err: err}
	}
}

// Update handles terminal events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.Resize(itemlist.Measured(float64(msg.Width) * m.opts.CellWidth))
		m.grid.SetHeight(max(msg.Height-chromeHeight, 3))
		m.sync()
		return m, nil

	case itemsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			slog.Error("load items", "error", msg.err)
			return m, nil
		}
		m.err = nil
		m.table.SetItems(msg.items)
		m.status = fmt.Sprintf("Loaded %d items", len(msg.items))
		m.sync()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.moveFocus(-1)
			return m, nil
		case "right", "l":
			m.moveFocus(1)
			return m, nil
		case "s", " ":
			m.toggleSort()
			return m, nil
		case "enter":
			m.selectCursor()
			return m, nil
		case "d":
			m.showDetail = !m.showDetail
			return m, nil
		case "r":
			m.status = "Reloading..."
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	n := len(m.view.Headers)
	if n == 0 {
		return
	}
	m.focus = min(max(m.focus+delta, 0), n-1)
	m.sync()
}

func (m *Model) toggleSort() {
	if m.focus >= len(m.view.Headers) {
		return
	}
	columnID := m.view.Headers[m.focus].ColumnID
	state, err := m.table.ToggleSort(columnID)
	if err != nil {
		m.err = err
		return
	}
	slog.Debug("sort toggled", "column", columnID, "sort", state.String())
	m.sync()
}

func (m *Model) selectCursor() {
	cursor := m.grid.Cursor()
	if cursor < 0 || cursor >= len(m.view.Rows) {
		return
	}
	if _, err := m.table.SelectRow(m.view.Rows[cursor].ID); err != nil {
		m.err = err
	}
}

// onSelect is the table's selection callback.
func (m *Model) onSelect(identifier string) {
	m.selected = identifier
	slog.Info("item selected", "identifier", identifier)

	if err := m.opts.Copy(identifier); err != nil {
		slog.Warn("copy to clipboard", "error", err)
		m.status = fmt.Sprintf("Selected %s (clipboard unavailable)", identifier)
		return
	}
	m.status = fmt.Sprintf("Selected %s (copied to clipboard)", identifier)
}

// sync pushes the current table view into the bubbles table, keeping the
// cursor on the same item when rows move.
func (m *Model) sync() {
	prevKey := ""
	if c := m.grid.Cursor(); c >= 0 && c < len(m.view.Rows) {
		prevKey = m.view.Rows[c].Key
	}

	m.view = m.table.View()
	if m.focus >= len(m.view.Headers) {
		m.focus = max(len(m.view.Headers)-1, 0)
	}

	widths := columnWidths(m.view.Headers, m.width)
	columns := make([]table.Column, len(m.view.Headers))
	for i, h := range m.view.Headers {
		columns[i] = table.Column{Title: headerTitle(h, i == m.focus), Width: widths[i]}
	}

	rows := make([]table.Row, len(m.view.Rows))
	cursor := 0
	for i, r := range m.view.Rows {
		cells := make(table.Row, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = cellText(c)
		}
		rows[i] = cells
		if r.Key == prevKey {
			cursor = i
		}
	}

	// Rows may be wider than the new column set, so clear them first.
	m.grid.SetRows(nil)
	m.grid.SetColumns(columns)
	m.grid.SetRows(rows)
	m.grid.SetCursor(cursor)
}

// View renders the screen.
func (m *Model) View() string {
	sortLabel := "none"
	if !m.view.Sort.Unsorted() {
		sortLabel = m.view.Sort.String()
	}
	title := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.title.Render("Items"),
		m.styles.summary.Render(fmt.Sprintf("%d rows · sort %s · %d of %d columns",
			len(m.view.Rows), sortLabel, len(m.view.Headers), len(m.table.Columns()))),
	)

	var status string
	switch {
	case m.err != nil:
		status = m.styles.errorMsg.Render("Error: " + m.err.Error())
	case m.loading && m.status == "":
		status = m.styles.status.Render("Loading...")
	default:
		status = m.styles.status.Render(m.status)
	}

	hint := m.styles.hint.Render("←/→ column · s sort · ↑/↓ move · enter select · d details · r reload · q quit")

	parts := []string{title, m.styles.panel.Render(m.grid.View())}
	if m.showDetail {
		if row, ok := m.cursorRow(); ok {
			parts = append(parts, m.detail.Render(detailMarkdown(row, m.opts.Location), m.width-4))
		}
	}
	parts = append(parts, status, hint)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// cursorRow returns the row under the cursor. Rows() and the view share the
// same order.
func (m *Model) cursorRow() (itemlist.Row, bool) {
	rows := m.table.Rows()
	c := m.grid.Cursor()
	if c < 0 || c >= len(rows) {
		return itemlist.Row{}, false
	}
	return rows[c], true
}

// Selected returns the identifier of the last selected row.
func (m *Model) Selected() string {
	return m.selected
}

func headerTitle(h itemlist.Header, focused bool) string {
	title := h.Label
	switch h.Direction {
	case itemlist.Ascending:
		title += " ↑"
	case itemlist.Descending:
		title += " ↓"
	}
	if focused {
		title = "[" + title + "]"
	}
	return title
}

func cellText(c itemlist.Cell) string {
	switch c.Kind {
	case itemlist.CellCheck:
		return "✓"
	case itemlist.CellCross:
		return "✗"
	case itemlist.CellTagged:
		return "? " + c.Text
	default:
		return strings.ReplaceAll(c.Text, "\n", " ")
	}
}

// columnWidths gives every visible column its fixed width and the summary
// column the remainder of the terminal. Each cell also carries two cells of
// padding.
func columnWidths(headers []itemlist.Header, total int) []int {
	widths := make([]int, len(headers))
	used := 2 // panel border
	summary := -1
	for i, h := range headers {
		used += 2
		if w, ok := cellWidths[h.ColumnID]; ok {
			widths[i] = w
			used += w
			continue
		}
		summary = i
	}
	if summary >= 0 {
		widths[summary] = max(total-used, minSummaryWidth)
	}
	return widths
}
