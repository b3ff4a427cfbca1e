package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/service"
	"taskboard/internal/view"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 96

const columnGap = 2

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted          lipgloss.TerminalColor = ac("240", "243")
	colorAccent         lipgloss.TerminalColor = ac("27", "62")
	colorCardBorder     lipgloss.TerminalColor = ac("250", "243")
	colorSelectedBorder lipgloss.TerminalColor = ac("232", "255")
	colorHeaderBg       lipgloss.TerminalColor = ac("252", "235")

	priorityColors = map[service.Priority]lipgloss.TerminalColor{
		service.PriorityLow:    ac("28", "71"),
		service.PriorityMedium: ac("130", "179"),
		service.PriorityHigh:   ac("124", "203"),
	}
)

// Selection marks the focused card. Zero value selects nothing.
type Selection struct {
	Col    int
	Row    int
	Active bool
}

// BoardOptions controls RenderBoard.
type BoardOptions struct {
	Width    int
	Selected Selection
}

// RenderBoard draws the three status columns side by side followed by the
// summary line.
func RenderBoard(bv view.BoardView, opts BoardOptions) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	n := len(bv.Columns)
	if n == 0 {
		return ""
	}
	colW := (width - columnGap*(n-1)) / n
	if colW < 16 {
		colW = 16
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Background(colorHeaderBg).Padding(0, 1).Width(colW)
	muted := lipgloss.NewStyle().Foreground(colorMuted)

	rendered := make([]string, 0, n)
	for ci, col := range bv.Columns {
		lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", col.Label, len(col.Tasks)))}
		if len(col.Tasks) == 0 {
			lines = append(lines, muted.Padding(0, 1).Render("(empty)"))
		}
		for ri, t := range col.Tasks {
			sel := opts.Selected.Active && opts.Selected.Col == ci && opts.Selected.Row == ri
			lines = append(lines, renderCard(t, colW, sel))
		}
		rendered = append(rendered, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	// JoinHorizontal has no inter-column spacing.
	out := rendered[0]
	sep := strings.Repeat(" ", columnGap)
	for _, r := range rendered[1:] {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, r)
	}

	var b strings.Builder
	if bv.Empty {
		if bv.Filters.Active() {
			b.WriteString(muted.Render("No tasks match the filters."))
		} else {
			b.WriteString(muted.Render("No tasks yet."))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(out)
	b.WriteString("\n")
	b.WriteString(RenderSummary(bv.Summary))
	return b.String()
}

// RenderSummary renders the counters with a progress bar.
func RenderSummary(s view.Summary) string {
	const barW = 20
	filled := s.Percent * barW / 100
	bar := lipgloss.NewStyle().Foreground(colorAccent).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorMuted).Render(strings.Repeat("░", barW-filled))
	return fmt.Sprintf("%s %3d%%  total %d · pending %d · in progress %d · done %d",
		bar, s.Percent, s.Total, s.Pending, s.InProgress, s.Done)
}

// WriteBoard writes RenderBoard output to w.
func WriteBoard(w io.Writer, bv view.BoardView, opts BoardOptions) {
	fmt.Fprintln(w, RenderBoard(bv, opts))
}

func renderCard(t service.Task, colW int, selected bool) string {
	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
	}
	// Border takes two cells.
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(colW - 2)

	title := lipgloss.NewStyle().Bold(selected).Render(normalizeTitle(t.Title))

	pc, ok := priorityColors[t.Priority]
	if !ok {
		pc = priorityColors[service.PriorityMedium]
	}
	meta := []string{lipgloss.NewStyle().Foreground(pc).Render(priorityLabel(t.Priority))}
	if t.Assignee != "" {
		meta = append(meta, "@"+t.Assignee)
	}
	if t.DueDate != "" {
		meta = append(meta, t.DueDate)
	}
	if t.ID != "" {
		meta = append(meta, "#"+t.ID)
	}
	body := title + "\n" + lipgloss.NewStyle().Foreground(colorMuted).Render(strings.Join(meta, " · "))
	return style.Render(body)
}
