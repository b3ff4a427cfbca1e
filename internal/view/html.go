package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"taskboard/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Template names, also used as element IDs on the page.
const (
	TmplPage    = "page"
	TmplBoard   = "board"
	TmplSummary = "summary"
	TmplModal   = "modal"
	TmplToast   = "toast"
)

// Page is the data for the full board page.
type Page struct {
	Title  string
	Board  BoardView
	Modal  ModalView
	Toasts []Toast
}

// ModalView is the create/edit dialog. A closed modal renders an empty
// placeholder so it can be patched later.
type ModalView struct {
	Open        bool
	Editing     bool
	Submitting  bool
	ID          string
	Title       string
	Description string
	Status      string
	Priority    string
	Assignee    string
	DueDate     string
	Errors      map[string]string
}

// Toast is a transient notification.
type Toast struct {
	ID      string
	Level   string // info | error
	Message string
}

// Renderer renders the embedded HTML templates. html/template escapes all
// task text, so user input can never inject markup.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"statuses":      func() []service.Status { return service.Statuses },
		"priorities":    func() []service.Priority { return service.Priorities },
		"lower":         strings.ToLower,
		"priorityClass": priorityClass,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the named template.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// String renders the named template into a string.
func (r *Renderer) String(name string, data any) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Page writes the full page.
func (r *Renderer) Page(w io.Writer, p Page) error { return r.Render(w, TmplPage, p) }

// Board renders the columns fragment.
func (r *Renderer) Board(v BoardView) (string, error) { return r.String(TmplBoard, v) }

// Summary renders the counters fragment.
func (r *Renderer) Summary(s Summary) (string, error) { return r.String(TmplSummary, s) }

// Modal renders the dialog fragment.
func (r *Renderer) Modal(m ModalView) (string, error) { return r.String(TmplModal, m) }

// Toast renders one notification.
func (r *Renderer) Toast(t Toast) (string, error) { return r.String(TmplToast, t) }

func priorityClass(p service.Priority) string {
	switch p {
	case service.PriorityHigh:
		return "prio-high"
	case service.PriorityLow:
		return "prio-low"
	default:
		return "prio-medium"
	}
}
