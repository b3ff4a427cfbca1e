// Package web serves the task board in the browser.
//
// The page is rendered once on GET /. Every action after that answers with a
// Datastar server-sent event stream that patches #board, #summary, #modal and
// #toasts. Drag and drop is handled by SortableJS in the browser, which posts
// the dropped card to /board/move.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/starfederation/datastar-go/datastar"

	"taskboard/internal/controller"
	"taskboard/internal/service"
	"taskboard/internal/view"
)

//go:embed static/*.js static/*.css
var staticFS embed.FS

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// DefaultTitle is the page heading.
const DefaultTitle = "Task board"

// Options configures a Server.
type Options struct {
	Title  string
	Logger *slog.Logger
}

// Server binds HTTP routes to one shared Controller.
type Server struct {
	ctrl    *controller.Controller
	render  *view.Renderer
	log     *slog.Logger
	title   string
	notices *noticeQueue
}

// New creates a Server over svc.
func New(svc service.Service, opts Options) (*Server, error) {
	render, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	q := &noticeQueue{}
	return &Server{
		ctrl:    controller.New(svc, controller.WithLogger(opts.Logger), controller.WithNotifier(q)),
		render:  render,
		log:     opts.Logger,
		title:   opts.Title,
		notices: q,
	}, nil
}

// Controller exposes the shared controller.
func (s *Server) Controller() *controller.Controller { return s.ctrl }

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/board.js", s.handleStatic("static/board.js", "application/javascript; charset=utf-8"))
	mux.HandleFunc("GET /static/board.css", s.handleStatic("static/board.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /board/refresh", s.handleRefresh)
	mux.HandleFunc("POST /board/filter", s.handleFilter)
	mux.HandleFunc("POST /board/move", s.handleMove)
	mux.HandleFunc("GET /tasks/new", s.handleNew)
	mux.HandleFunc("GET /tasks/{id}/edit", s.handleEdit)
	mux.HandleFunc("POST /session/close", s.handleClose)
	mux.HandleFunc("POST /tasks", s.handleSubmit)
	mux.HandleFunc("DELETE /tasks/{id}", s.handleDelete)
	return LoggingMiddleware(s.log, mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := staticFS.ReadFile(name)
		if err != nil || len(b) == 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// handleHome reloads the list and renders the whole page. A failed load
// still renders the (empty) board with an error toast.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	_ = s.ctrl.Close()
	_ = s.ctrl.Load(r.Context())

	page := view.Page{
		Title:  s.title,
		Board:  s.ctrl.Board(),
		Modal:  modalView(s.ctrl.Session()),
		Toasts: s.toasts(),
	}
	var b strings.Builder
	if err := s.render.Page(&b, page); err != nil {
		s.log.ErrorContext(r.Context(), "render page", slog.Any("error", err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_ = s.ctrl.Refresh(r.Context())
	s.patch(w, r, patchBoard)
}

type filterForm struct {
	Text     string `schema:"text"`
	Status   string `schema:"status"`
	Priority string `schema:"priority"`
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var f filterForm
	if err := decodeForm(r, &f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.ctrl.SetFilters(strings.TrimSpace(f.Text), f.Status, f.Priority); err != nil {
		s.notices.Notify(controller.Notice{Level: controller.LevelError, Message: "Invalid filter", Err: err})
	}
	s.patch(w, r, patchBoard)
}

type moveForm struct {
	ID     string `schema:"id"`
	Status string `schema:"status"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var f moveForm
	if err := decodeForm(r, &f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status, ok := service.ParseStatus(f.Status)
	if !ok || f.ID == "" {
		http.Error(w, "id and a valid status are required", http.StatusBadRequest)
		return
	}
	// Failures are reported as toasts; the re-rendered board shows the
	// card back in its original column.
	_ = s.ctrl.Move(r.Context(), f.ID, status)
	s.patch(w, r, patchBoard)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ctrl.OpenCreate(); err != nil {
		s.busy(err)
	}
	s.patch(w, r, patchModal)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ctrl.OpenEdit(r.Context(), r.PathValue("id")); err != nil {
		s.busy(err)
	}
	s.patch(w, r, patchModal|patchBoard)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Close(); err != nil {
		s.busy(err)
	}
	s.patch(w, r, patchModal)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var form controller.Form
	if err := decodeForm(r, &form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := s.ctrl.Submit(r.Context(), form)
	if errors.Is(err, controller.ErrNoSession) {
		// The form outlived its session (server restart, second tab).
		// Reopen it for the task the form names and submit again.
		if strings.TrimSpace(form.ID) != "" {
			_, err = s.ctrl.OpenEdit(r.Context(), strings.TrimSpace(form.ID))
		} else {
			_, err = s.ctrl.OpenCreate()
		}
		if err == nil {
			err = s.ctrl.Submit(r.Context(), form)
		}
	}
	if errors.Is(err, controller.ErrBusy) {
		s.busy(err)
	}
	s.patch(w, r, patchBoard|patchModal)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	// The browser already asked for confirmation.
	_ = s.ctrl.Delete(r.Context(), r.PathValue("id"), controller.Confirmed)
	s.patch(w, r, patchBoard|patchModal)
}

func (s *Server) busy(err error) {
	if errors.Is(err, controller.ErrBusy) {
		s.notices.Notify(controller.Notice{Level: controller.LevelError, Message: "Still saving, try again", Err: err})
	}
}

type patchSet int

const (
	patchBoard patchSet = 1 << iota // #board and #summary
	patchModal
)

// patch streams the requested fragments plus any pending toasts.
func (s *Server) patch(w http.ResponseWriter, r *http.Request, what patchSet) {
	sse := datastar.NewSSE(w, r)

	send := func(selector string, mode datastar.ElementPatchMode, render func() (string, error)) {
		html, err := render()
		if err != nil {
			s.log.ErrorContext(r.Context(), "render fragment", slog.String("selector", selector), slog.Any("error", err))
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		_ = sse.PatchElements(html, datastar.WithSelector(selector), datastar.WithMode(mode))
	}

	if what&patchBoard != 0 {
		bv := s.ctrl.Board()
		send("#board", datastar.ElementPatchModeOuter, func() (string, error) { return s.render.Board(bv) })
		send("#summary", datastar.ElementPatchModeOuter, func() (string, error) { return s.render.Summary(bv.Summary) })
	}
	if what&patchModal != 0 {
		mv := modalView(s.ctrl.Session())
		send("#modal", datastar.ElementPatchModeOuter, func() (string, error) { return s.render.Modal(mv) })
	}
	for _, t := range s.toasts() {
		send("#toasts", datastar.ElementPatchModeAppend, func() (string, error) { return s.render.Toast(t) })
	}
}

func (s *Server) toasts() []view.Toast {
	pending := s.notices.Drain()
	out := make([]view.Toast, 0, len(pending))
	for _, n := range pending {
		out = append(out, view.Toast{ID: uuid.NewString(), Level: string(n.Level), Message: n.Message})
	}
	return out
}

func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	if err := schemaDecoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	return nil
}

func modalView(sess controller.Session) view.ModalView {
	if !sess.Open() {
		return view.ModalView{}
	}
	f := sess.Form
	mv := view.ModalView{
		Open:        true,
		Editing:     sess.Phase == controller.OpenForEdit || (sess.Phase == controller.Submitting && f.ID != ""),
		Submitting:  sess.Phase == controller.Submitting,
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Priority:    f.Priority,
		Assignee:    f.Assignee,
		DueDate:     f.DueDate,
	}
	if sess.Err != nil {
		mv.Errors = make(map[string]string, len(sess.Err.Fields))
		for _, fe := range sess.Err.Fields {
			mv.Errors[fe.Field] = fe.Message
		}
	}
	return mv
}

// noticeQueue collects controller notices until the next response drains
// them into toasts.
type noticeQueue struct {
	mu    sync.Mutex
	items []controller.Notice
}

func (q *noticeQueue) Notify(n controller.Notice) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

func (q *noticeQueue) Drain() []controller.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
