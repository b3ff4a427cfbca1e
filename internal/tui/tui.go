// Package tui is the interactive terminal board.
//
// The model never talks to the service itself: every action goes through the
// shared controller inside a tea.Cmd, and View re-reads the controller's board
// on each frame. An optimistic move is therefore visible while the update is
// still in flight.
package tui

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/board"
	"taskboard/internal/controller"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/view"
)

// Run starts the full-screen board and blocks until the user quits.
func Run(ctx context.Context, svc service.Service, log *slog.Logger) error {
	m := NewModel(ctx, svc, log)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

type mode int

const (
	modeBoard mode = iota
	modeFilter
	modeTitle
	modeConfirmDelete
)

// actionDoneMsg reports a finished controller call.
type actionDoneMsg struct{ err error }

// lastNotice keeps the most recent controller notice for the status line.
type lastNotice struct {
	mu     sync.Mutex
	notice controller.Notice
}

func (l *lastNotice) Notify(n controller.Notice) {
	l.mu.Lock()
	l.notice = n
	l.mu.Unlock()
}

func (l *lastNotice) get() controller.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notice
}

// Model is the bubbletea model for the board.
type Model struct {
	ctx     context.Context
	ctrl    *controller.Controller
	notices *lastNotice

	sel    output.Selection
	mode   mode
	input  textinput.Model
	width  int
	height int
	busy   int
	follow string // card to keep selected once the running action ends

	saving    bool   // title prompt waits for its submit to finish
	promptErr string // why the last submit failed
}

// NewModel creates a board model over svc.
func NewModel(ctx context.Context, svc service.Service, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}
	notices := &lastNotice{}
	in := textinput.New()
	in.CharLimit = 200
	in.Width = 48

	return Model{
		ctx:     ctx,
		ctrl:    controller.New(svc, controller.WithLogger(log), controller.WithNotifier(notices)),
		notices: notices,
		sel:     output.Selection{Active: true},
		input:   in,
	}
}

// Controller exposes the model's controller.
func (m Model) Controller() *controller.Controller { return m.ctrl }

// Init loads the board.
func (m Model) Init() tea.Cmd {
	return m.run(func(ctx context.Context, c *controller.Controller) error { return c.Load(ctx) })
}

func (m Model) run(fn func(context.Context, *controller.Controller) error) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return actionDoneMsg{err: fn(ctx, ctrl)}
	}
}

// Update handles keys and finished actions.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case actionDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		if m.follow != "" {
			m.selectID(m.follow)
			m.follow = ""
		}
		m.clamp()
		if m.saving {
			return m.submitDone(msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeFilter, modeTitle:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.sel.Col--
		m.clamp()
	case "right", "l":
		m.sel.Col++
		m.clamp()
	case "up", "k":
		m.sel.Row--
		m.clamp()
	case "down", "j":
		m.sel.Row++
		m.clamp()
	case "H", "shift+left":
		return m.moveSelected(-1)
	case "L", "shift+right":
		return m.moveSelected(1)
	case "r":
		return m.start(func(ctx context.Context, c *controller.Controller) error { return c.Refresh(ctx) })
	case "/":
		m.mode = modeFilter
		m.input.Placeholder = "filter text"
		m.input.SetValue(m.ctrl.Filters().Text)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "s":
		f := m.ctrl.Filters()
		_ = m.ctrl.SetFilter(board.FilterStatus, string(nextStatus(f.Status)))
		m.clamp()
	case "p":
		f := m.ctrl.Filters()
		_ = m.ctrl.SetFilter(board.FilterPriority, string(nextPriority(f.Priority)))
		m.clamp()
	case "c":
		m.ctrl.ClearFilters()
		m.clamp()
	case "n":
		if _, err := m.ctrl.OpenCreate(); err != nil {
			return m, nil
		}
		return m.openTitle("")
	case "e", "enter":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		form, err := m.ctrl.OpenEdit(m.ctx, t.ID)
		if err != nil {
			return m, nil
		}
		return m.openTitle(form.Title)
	case "d":
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
		}
	}
	return m, nil
}

func (m Model) openTitle(value string) (tea.Model, tea.Cmd) {
	m.mode = modeTitle
	m.promptErr = ""
	m.input.Placeholder = "task title"
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

// submitDone keeps the prompt open with the entered title while the
// controller session is still open after a failed submit.
func (m Model) submitDone(err error) (tea.Model, tea.Cmd) {
	m.saving = false
	s := m.ctrl.Session()
	if err == nil || !s.Open() {
		m.mode = modeBoard
		m.promptErr = ""
		return m, nil
	}
	m.promptErr = m.notices.get().Message
	if m.promptErr == "" {
		m.promptErr = err.Error()
	}
	m.input.SetValue(s.Form.Title)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		if m.mode == modeTitle {
			_ = m.ctrl.Close()
		}
		m.mode = modeBoard
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		m.input.Blur()
		if m.mode == modeFilter {
			m.mode = modeBoard
			_ = m.ctrl.SetFilter(board.FilterText, strings.TrimSpace(value))
			m.clamp()
			return m, nil
		}
		m.saving = true
		form := m.ctrl.Session().Form
		form.Title = value
		return m.start(func(ctx context.Context, c *controller.Controller) error { return c.Submit(ctx, form) })
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBoard
	t, ok := m.selected()
	if !ok || (msg.String() != "y" && msg.String() != "Y") {
		return m, nil
	}
	id := t.ID
	return m.start(func(ctx context.Context, c *controller.Controller) error {
		return c.Delete(ctx, id, controller.Confirmed)
	})
}

func (m Model) moveSelected(delta int) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	to := m.sel.Col + delta
	if to < 0 || to >= len(service.Statuses) {
		return m, nil
	}
	id, status := t.ID, service.Statuses[to]
	m.follow = id
	return m.start(func(ctx context.Context, c *controller.Controller) error { return c.Move(ctx, id, status) })
}

func (m Model) start(fn func(context.Context, *controller.Controller) error) (tea.Model, tea.Cmd) {
	m.busy++
	return m, m.run(fn)
}

func (m Model) selected() (service.Task, bool) {
	bv := m.ctrl.Board()
	if m.sel.Col < 0 || m.sel.Col >= len(bv.Columns) {
		return service.Task{}, false
	}
	tasks := bv.Columns[m.sel.Col].Tasks
	if m.sel.Row < 0 || m.sel.Row >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[m.sel.Row], true
}

func (m *Model) selectID(id string) {
	for ci, col := range m.ctrl.Board().Columns {
		for ri, t := range col.Tasks {
			if t.ID == id {
				m.sel.Col, m.sel.Row = ci, ri
				return
			}
		}
	}
}

func (m *Model) clamp() {
	bv := m.ctrl.Board()
	n := len(bv.Columns)
	if n == 0 {
		m.sel.Col, m.sel.Row = 0, 0
		return
	}
	m.sel.Col = max(0, min(m.sel.Col, n-1))
	rows := len(bv.Columns[m.sel.Col].Tasks)
	m.sel.Row = max(0, min(m.sel.Row, rows-1))
}

func nextStatus(s service.Status) service.Status {
	if s == "" {
		return service.Statuses[0]
	}
	for i, st := range service.Statuses {
		if st == s && i+1 < len(service.Statuses) {
			return service.Statuses[i+1]
		}
	}
	return ""
}

func nextPriority(p service.Priority) service.Priority {
	if p == "" {
		return service.Priorities[0]
	}
	for i, pr := range service.Priorities {
		if pr == p && i+1 < len(service.Priorities) {
			return service.Priorities[i+1]
		}
	}
	return ""
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "243"})
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "203"}).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "62"}).Bold(true)
)

// View renders the board, the prompt and the status line.
func (m Model) View() string {
	bv := m.ctrl.Board()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Task board"))
	if f := filterLine(bv); f != "" {
		b.WriteString("  " + mutedStyle.Render(f))
	}
	b.WriteString("\n\n")
	b.WriteString(output.RenderBoard(bv, output.BoardOptions{Width: m.width, Selected: m.sel}))
	b.WriteString("\n\n")

	switch m.mode {
	case modeFilter:
		b.WriteString(promptStyle.Render("Filter: ") + m.input.View())
	case modeTitle:
		label := "New task: "
		if sess := m.ctrl.Session(); sess.Phase == controller.OpenForEdit || sess.Form.ID != "" {
			label = "Edit title: "
		}
		b.WriteString(promptStyle.Render(label) + m.input.View())
		switch {
		case m.saving:
			b.WriteString("  " + mutedStyle.Render("saving…"))
		case m.promptErr != "":
			b.WriteString("  " + errorStyle.Render(m.promptErr))
		}
	case modeConfirmDelete:
		t, _ := m.selected()
		b.WriteString(errorStyle.Render("Delete “"+t.Title+"”? (y/n)"))
	default:
		b.WriteString(statusLine(m.notices.get(), m.busy > 0))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("←/→/↑/↓ select  H/L move  n new  e edit  d delete  / filter  s status  p priority  c clear  r refresh  q quit"))
	return b.String()
}

func filterLine(bv view.BoardView) string {
	var parts []string
	if bv.Filters.Text != "" {
		parts = append(parts, "text: "+bv.Filters.Text)
	}
	if bv.Filters.Status != "" {
		parts = append(parts, "status: "+bv.Filters.Status.Label())
	}
	if bv.Filters.Priority != "" {
		parts = append(parts, "priority: "+strings.ToLower(string(bv.Filters.Priority)))
	}
	return strings.Join(parts, " · ")
}

func statusLine(n controller.Notice, busy bool) string {
	if busy {
		return mutedStyle.Render("working…")
	}
	if n.Message == "" {
		return ""
	}
	if n.Level == controller.LevelError {
		return errorStyle.Render(n.Message)
	}
	return n.Message
}
