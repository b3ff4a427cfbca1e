package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"

	"taskboard/internal/config"
	"taskboard/internal/controller"
	"taskboard/internal/exitcode"
	"taskboard/internal/logger"
	"taskboard/internal/service"
)

// commandLogger builds the logger for one command run. Records go to errOut
// so they never mix with command output.
func commandLogger(cfg *config.Config, errOut io.Writer, defaultLevel string) *logger.Logger {
	level := cfg.LogLevel
	if level == "" {
		level = defaultLevel
	}
	opts := []logger.Option{logger.WithOutput(errOut)}
	if cfg.Debug {
		opts = append(opts, logger.WithLevel("DEBUG"))
	}
	return logger.New(logger.Options{Level: level, Format: cfg.LogFormat}, opts...)
}

func newController(cfg *config.Config, svc service.Service, errOut io.Writer) *controller.Controller {
	log := commandLogger(cfg, errOut, "WARN")
	return controller.New(svc, controller.WithLogger(log.Logger))
}

// reportError prints err and maps it to an exit code.
func reportError(errOut io.Writer, err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	switch service.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// reportTaskError is reportError with a friendlier message for unknown ids.
func reportTaskError(errOut io.Writer, id string, err error) int {
	if errors.Is(err, service.ErrNotFound) {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return exitcode.UserError
	}
	return reportError(errOut, err)
}

// singleID extracts the one positional task id.
func singleID(args []string, errOut io.Writer) (string, bool) {
	switch {
	case len(args) == 0:
		fmt.Fprintln(errOut, "error: task id required")
		return "", false
	case len(args) > 1:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", false
	}
	return args[0], true
}

func printOK(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// filterFlags are the board filters shared by board, list and summary.
type filterFlags struct {
	text     string
	status   string
	priority string
}

func (f *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.text, "text", "", "")
	fs.StringVar(&f.text, "t", "", "")
	fs.StringVar(&f.status, "status", "", "")
	fs.StringVar(&f.priority, "priority", "", "")
}

// load applies the filters and fetches the board. Bad filter values are
// rejected before any service call. A nil controller comes with the exit code.
func (f *filterFlags) load(ctx context.Context, cfg *config.Config, svc service.Service, errOut io.Writer) (*controller.Controller, int) {
	ctrl := newController(cfg, svc, errOut)
	if err := ctrl.SetFilters(f.text, f.status, f.priority); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}
	if err := ctrl.Load(ctx); err != nil {
		return nil, reportError(errOut, err)
	}
	return ctrl, exitcode.Success
}

// optString is a string flag that remembers whether it was given, so an
// explicit empty value can clear a field.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

// taskFlags are the editable task fields for add and edit.
type taskFlags struct {
	title       optString
	description optString
	status      optString
	priority    optString
	assignee    optString
	due         optString
}

func (f *taskFlags) register(fs *flag.FlagSet, withTitle bool) {
	*f = taskFlags{}
	if withTitle {
		fs.Var(&f.title, "title", "")
	}
	fs.Var(&f.description, "description", "")
	fs.Var(&f.description, "d", "")
	fs.Var(&f.status, "status", "")
	fs.Var(&f.priority, "priority", "")
	fs.Var(&f.priority, "p", "")
	fs.Var(&f.assignee, "assignee", "")
	fs.Var(&f.assignee, "a", "")
	fs.Var(&f.due, "due", "")
}

// applyTo overwrites the form fields that were given and reports whether
// anything was.
func (f *taskFlags) applyTo(form *controller.Form) bool {
	changed := false
	set := func(o optString, dst *string) {
		if o.set {
			*dst = o.value
			changed = true
		}
	}
	set(f.title, &form.Title)
	set(f.description, &form.Description)
	set(f.status, &form.Status)
	set(f.priority, &form.Priority)
	set(f.assignee, &form.Assignee)
	set(f.due, &form.DueDate)
	return changed
}
