// Package controller turns user actions into service calls and state
// mutations.
//
// A Controller owns the board State and the edit Session. Its mutex is held
// only while touching them, never across a service call, so a slow request
// does not block other actions and the last response to arrive wins.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/service"
	"taskboard/internal/view"
)

var (
	// ErrNoSession is returned when submitting without an open form.
	ErrNoSession = errors.New("no open form")

	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("form is already submitting")

	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Confirmed is a ConfirmFunc for callers that already asked the user.
func Confirmed(string) bool { return true }

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithNotifier sets where notices go. Defaults to discarding them.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

// WithClock overrides time.Now (used for the default due date).
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller binds user actions to the remote service and the board state.
type Controller struct {
	svc    service.Service
	notify Notifier
	log    *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	state   *board.State
	session Session
}

// New creates a Controller with an empty board.
func New(svc service.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:    svc,
		notify: NotifierFunc(func(Notice) {}),
		log:    slog.Default(),
		now:    time.Now,
		state:  board.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Board returns the current board view model.
func (c *Controller) Board() view.BoardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.Board(c.state)
}

// Tasks returns a copy of the task list.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Tasks()
}

// Filters returns the active filters.
func (c *Controller) Filters() board.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Filters
}

// Session returns a copy of the edit session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Load fetches the whole list and replaces the board.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.svc.List(ctx)
	if err != nil {
		c.fail(ctx, "Could not reach the task service", err)
		return err
	}
	c.apply(HandleLoaded(tasks))
	c.log.DebugContext(ctx, "board loaded", slog.Int("tasks", len(tasks)))
	return nil
}

// Refresh reloads the board and confirms it to the user.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.Load(ctx); err != nil {
		return err
	}
	c.info("Board refreshed")
	return nil
}

// SetFilter changes one filter.
func (c *Controller) SetFilter(field board.FilterField, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := HandleFilter(c.state, FilterEvent{Field: field, Value: value})
	if err != nil {
		return err
	}
	m.Apply(c.state)
	return nil
}

// SetFilters replaces all filters at once. Invalid values leave the filters
// unchanged.
func (c *Controller) SetFilters(text, status, priority string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	tmp := board.New()
	tmp.Filters = c.state.Filters
	for _, ev := range []FilterEvent{
		{Field: board.FilterText, Value: text},
		{Field: board.FilterStatus, Value: status},
		{Field: board.FilterPriority, Value: priority},
	} {
		m, err := HandleFilter(tmp, ev)
		if err != nil {
			return err
		}
		m.Apply(tmp)
	}
	board.SetFilters(tmp.Filters).Apply(c.state)
	return nil
}

// ClearFilters resets every filter.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	board.SetFilters(board.Filters{}).Apply(c.state)
}

// OpenCreate opens an empty form with today's date as due date.
func (c *Controller) OpenCreate() (Form, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Phase == Submitting {
		return Form{}, ErrBusy
	}
	c.session = Session{Phase: OpenForCreate, Form: NewForm(c.now())}
	return c.session.Form, nil
}

// OpenEdit opens the form pre-filled with the task's values. A task that is
// not on the board is fetched from the service.
func (c *Controller) OpenEdit(ctx context.Context, id string) (Form, error) {
	c.mu.Lock()
	if c.session.Phase == Submitting {
		c.mu.Unlock()
		return Form{}, ErrBusy
	}
	task, ok := c.state.Find(id)
	c.mu.Unlock()

	if !ok {
		var err error
		task, err = c.svc.Get(ctx, id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.warn(fmt.Sprintf("Task %s not found", id))
			} else {
				c.fail(ctx, "Could not load the task", err)
			}
			return Form{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.state.Upsert(task)
	}
	c.session = Session{Phase: OpenForEdit, Form: FormFor(task)}
	return c.session.Form, nil
}

// Close abandons the open form.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Phase == Submitting {
		return ErrBusy
	}
	c.session = Session{}
	return nil
}

// Submit validates the form and creates or updates the task depending on the
// open session. On any failure the form stays open with the entered values.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	form = form.Normalize()

	c.mu.Lock()
	open := c.session.Phase
	switch open {
	case Closed:
		c.mu.Unlock()
		return ErrNoSession
	case Submitting:
		c.mu.Unlock()
		return ErrBusy
	case OpenForEdit:
		form.ID = c.session.Form.ID
	case OpenForCreate:
		form.ID = ""
	}
	if err := form.Validate(); err != nil {
		var verr *service.ValidationError
		errors.As(err, &verr)
		c.session = Session{Phase: open, Form: form, Err: verr}
		c.mu.Unlock()
		c.warn(validationMessage(verr))
		return err
	}
	c.session = Session{Phase: Submitting, Form: form}
	c.mu.Unlock()

	task := form.Task()
	if open == OpenForEdit {
		return c.submitUpdate(ctx, form, task)
	}
	return c.submitCreate(ctx, form, task)
}

func (c *Controller) submitCreate(ctx context.Context, form Form, task service.Task) error {
	created, err := c.svc.Create(ctx, task)
	if err != nil {
		c.reopen(OpenForCreate, form)
		c.fail(ctx, "Could not save the task", err)
		return err
	}

	// The list is re-fetched so the board shows the backend's id and order.
	tasks, listErr := c.svc.List(ctx)

	c.mu.Lock()
	switch {
	case listErr == nil:
		HandleLoaded(tasks).Apply(c.state)
	case created.ID != "":
		HandleSaved(SavedEvent{Task: created, Created: true}).Apply(c.state)
	}
	c.session = Session{}
	c.mu.Unlock()

	if listErr != nil {
		c.log.WarnContext(ctx, "re-fetch after create failed", slog.Any("error", listErr))
		if created.ID == "" {
			c.warn("Task created; refresh to see it")
			return nil
		}
	}
	c.info("Task created")
	return nil
}

func (c *Controller) submitUpdate(ctx context.Context, form Form, task service.Task) error {
	if err := c.svc.Update(ctx, task.ID, task); err != nil {
		c.reopen(OpenForEdit, form)
		c.fail(ctx, "Could not save the task", err)
		return err
	}

	c.mu.Lock()
	HandleSaved(SavedEvent{Task: task}).Apply(c.state)
	c.session = Session{}
	c.mu.Unlock()

	c.info("Task updated")
	return nil
}

func (c *Controller) reopen(phase Phase, form Form) {
	c.mu.Lock()
	c.session = Session{Phase: phase, Form: form}
	c.mu.Unlock()
}

// Delete asks for confirmation and deletes the task.
func (c *Controller) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	if id == "" {
		return &service.ValidationError{Fields: []service.FieldError{{Field: "id", Message: "required"}}}
	}
	if confirm != nil && !confirm("Delete this task?") {
		return ErrCancelled
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		c.fail(ctx, "Could not delete the task", err)
		return err
	}

	c.mu.Lock()
	HandleDeleted(DeletedEvent{ID: id}).Apply(c.state)
	if c.session.Phase == OpenForEdit && c.session.Form.ID == id {
		c.session = Session{}
	}
	c.mu.Unlock()

	c.info("Task deleted")
	return nil
}

// Move changes a task's status optimistically: the board shows the new
// column at once and goes back if the service rejects the update.
func (c *Controller) Move(ctx context.Context, id string, to service.Status) error {
	if !to.Valid() {
		return &service.ValidationError{Fields: []service.FieldError{{Field: "status", Message: "must be one of PENDING IN_PROGRESS DONE"}}}
	}

	c.mu.Lock()
	cur, ok := c.state.Find(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("move %s: %w", id, service.ErrNotFound)
	}
	if cur.Status == to {
		c.mu.Unlock()
		return nil
	}
	tx, _ := c.state.Begin(id, func(t *service.Task) { t.Status = to })
	moved, _ := c.state.Find(id)
	c.mu.Unlock()

	if err := c.svc.Update(ctx, id, moved); err != nil {
		c.mu.Lock()
		// A later move of the same task owns the column now.
		tx.Rollback(c.state, func(cur *service.Task, prev service.Task) {
			if cur.Status == to {
				cur.Status = prev.Status
			}
		})
		c.mu.Unlock()
		c.fail(ctx, "Could not update the status", err)
		return err
	}

	c.log.DebugContext(ctx, "task moved", slog.String("id", id), slog.String("from", string(cur.Status)), slog.String("to", string(to)))
	c.info("Status updated")
	return nil
}

func (c *Controller) apply(m board.Mutation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m.Apply(c.state)
}

func (c *Controller) info(msg string) {
	c.notify.Notify(Notice{Level: LevelInfo, Message: msg})
}

func (c *Controller) warn(msg string) {
	c.notify.Notify(Notice{Level: LevelError, Message: msg})
}

func (c *Controller) fail(ctx context.Context, msg string, err error) {
	c.log.WarnContext(ctx, msg, slog.Any("error", err))
	c.notify.Notify(Notice{Level: LevelError, Message: msg, Err: err})
}

func validationMessage(verr *service.ValidationError) string {
	if verr == nil || len(verr.Fields) == 0 {
		return "Invalid task"
	}
	f := verr.Fields[0]
	if f.Field == "title" && f.Message == "required" {
		return "Title is required"
	}
	return fmt.Sprintf("Invalid %s: %s", f.Field, f.Message)
}
