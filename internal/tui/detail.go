package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

// detailRenderer caches a glamour renderer per word-wrap width.
type detailRenderer struct {
	mu       sync.Mutex
	wrap     int
	renderer *glamour.TermRenderer
}

// Render returns terminal output for markdown, or markdown itself when
// glamour cannot render it.
func (d *detailRenderer) Render(markdown string, wrap int) string {
	r := d.ensure(wrap)
	if r == nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

func (d *detailRenderer) ensure(wrap int) *glamour.TermRenderer {
	d.mu.Lock()
	defer d.mu.Unlock()

	wrap = max(wrap, 20)
	if d.renderer != nil && d.wrap == wrap {
		return d.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	d.renderer, d.wrap = r, wrap
	return r
}

// detailMarkdown describes every field of row, including the ones whose
// columns are hidden at the current width.
func detailMarkdown(row itemlist.Row, loc *time.Location) string {
	var b strings.Builder

	summary := row.Summary
	if summary == "" {
		summary = "(no summary)"
	}
	fmt.Fprintf(&b, "## %s %s\n\n", row.Type, summary)

	visibility := "public"
	if row.IsPrivate {
		visibility = "private"
	}
	service := row.ServiceName()
	if service == "" {
		service = "none"
	}

	fmt.Fprintf(&b, "- **Status:** %s\n", row.Status)
	fmt.Fprintf(&b, "- **Visibility:** %s\n", visibility)
	fmt.Fprintf(&b, "- **Service:** %s\n", service)
	fmt.Fprintf(&b, "- **Author:** %s\n", row.Author)
	fmt.Fprintf(&b, "- **Created:** %s\n", itemlist.FormatDate(row.CreatedOn, loc))
	fmt.Fprintf(&b, "- **Updated:** %s\n", itemlist.FormatDate(row.UpdatedOn, loc))
	return b.String()
}
