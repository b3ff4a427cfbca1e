// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskboard/internal/service"
	"taskboard/internal/view"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

// FormatTaskLine formats one task for the list command.
// Format: "{ID:>4}  {STATUS:<11}  {PRIORITY:<6}  {TITLE}[ @{ASSIGNEE}][ due {DATE}]\n"
func FormatTaskLine(w io.Writer, task service.Task) {
	line := fmt.Sprintf("%4s  %-11s  %-6s  %s", task.ID, task.Status.Label(), priorityLabel(task.Priority), normalizeTitle(task.Title))
	if task.Assignee != "" {
		line += " @" + task.Assignee
	}
	if task.DueDate != "" {
		line += " due " + task.DueDate
	}
	fmt.Fprintln(w, line)
}

// FormatList formats tasks in order, or "no tasks" when there are none.
func FormatList(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, t := range tasks {
		FormatTaskLine(w, t)
	}
}

// FormatColumns formats the board as plain sections, one per column.
func FormatColumns(w io.Writer, cols []view.Column) {
	for _, col := range cols {
		FormatListHeader(w, fmt.Sprintf("%s (%d)", col.Label, len(col.Tasks)))
		for _, t := range col.Tasks {
			FormatTaskLine(w, t)
		}
	}
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatTask formats the details of a single task.
func FormatTask(w io.Writer, task service.Task) {
	field := func(name, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "%-12s %s\n", name+":", value)
	}
	field("ID", task.ID)
	field("Title", normalizeTitle(task.Title))
	field("Status", task.Status.Label())
	field("Priority", priorityLabel(task.Priority))
	field("Assignee", task.Assignee)
	field("Due", task.DueDate)
	if d := strings.TrimSpace(task.Description); d != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d)
	}
}

// FormatSummary formats the board counters on one line.
func FormatSummary(w io.Writer, s view.Summary) {
	fmt.Fprintf(w, "%d tasks: %d pending, %d in progress, %d done (%d%% complete)\n",
		s.Total, s.Pending, s.InProgress, s.Done, s.Percent)
}

func priorityLabel(p service.Priority) string {
	switch p {
	case service.PriorityLow:
		return "low"
	case service.PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
