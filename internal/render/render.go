// Package render formats review summaries and activity lines for the
// console.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/strideapp/stride/internal/models"
	"github.com/strideapp/stride/internal/reflect"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	categoryStyle = lipgloss.NewStyle().Bold(true)
	totalStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // Green
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	plainStyle    = lipgloss.NewStyle()
)

// Duration formats a duration as "2h 30m 5s", dropping zero components.
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

func seconds(sec int64) string {
	return Duration(time.Duration(sec) * time.Second)
}

// Activity formats a one-line description of an activity.
func Activity(a *models.Activity) string {
	line := fmt.Sprintf("%q", a.Description)
	if a.Category != "" {
		line += fmt.Sprintf(" (%s)", a.Category)
	}
	if len(a.Tags) > 0 {
		line += " " + dimStyle.Render("#"+strings.Join(a.Tags, " #"))
	}
	line += fmt.Sprintf(" started %s", a.Begin.Format("2006-01-02 15:04"))
	if a.End != nil {
		line += fmt.Sprintf(", ended %s", a.End.Format("15:04"))
	}
	if a.DurationSec != nil {
		line += fmt.Sprintf(" (%s)", seconds(*a.DurationSec))
	}
	return line
}

// Summary renders the grouped review summary as an aligned console table.
func Summary(s *reflect.Summary) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"Activity insights for %s - %s",
		s.Start.Format("2006-01-02 15:04"),
		s.End.Format("2006-01-02 15:04"),
	)))
	b.WriteString("\n\n")

	if s.Empty() {
		b.WriteString(dimStyle.Render("No activities found for this period."))
		b.WriteString("\n")
		return b.String()
	}

	w := newTableWriter(&b)
	w.row(headerStyle, "Category", "Description", "Duration (Sessions)", "Breaks (Amount)")

	for _, category := range s.Categories {
		w.row(categoryStyle, category.Name, "",
			seconds(category.TotalDurationSec),
			fmt.Sprintf("%s (%d)", seconds(category.TotalBreakSec), category.TotalBreakCount))
		for _, sub := range category.Subcategories {
			for _, entry := range sub.Entries {
				w.row(plainStyle, "  "+sub.Name, entry.Description,
					fmt.Sprintf("%s (%d)", seconds(entry.TotalDurationSec), entry.Sessions),
					fmt.Sprintf("%s (%d)", seconds(entry.TotalBreakSec), entry.TotalBreakCount))
			}
		}
	}

	w.row(totalStyle, "Total", "",
		seconds(s.TotalDurationSec),
		fmt.Sprintf("%s (%d)", seconds(s.TotalBreakSec), s.TotalBreakCount))

	w.flush()
	return b.String()
}

// tableWriter accumulates rows and pads columns on flush. Styles are
// applied after padding so ANSI escapes do not skew the widths.
type tableWriter struct {
	out    *strings.Builder
	rows   [][]string
	styles []lipgloss.Style
	widths []int
}

func newTableWriter(out *strings.Builder) *tableWriter {
	return &tableWriter{out: out}
}

func (w *tableWriter) row(style lipgloss.Style, cells ...string) {
	for i, cell := range cells {
		if i >= len(w.widths) {
			w.widths = append(w.widths, 0)
		}
		if len(cell) > w.widths[i] {
			w.widths[i] = len(cell)
		}
	}
	w.rows = append(w.rows, cells)
	w.styles = append(w.styles, style)
}

func (w *tableWriter) flush() {
	for i, cells := range w.rows {
		var padded []string
		for col, cell := range cells {
			padded = append(padded, cell+strings.Repeat(" ", w.widths[col]-len(cell)))
		}
		line := strings.TrimRight(strings.Join(padded, "  "), " ")
		w.out.WriteString(w.styles[i].Render(line))
		w.out.WriteString("\n")
	}
}
