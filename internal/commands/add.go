package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
// Unset fields take the form defaults: pending, medium priority, due today.
type AddCmd struct {
	fields taskFlags
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) NeedsService() bool { return true }
func (c *AddCmd) Usage() string {
	return "taskboard add [-d <text>] [--status <s>] [-p <priority>] [-a <who>] [--due <YYYY-MM-DD>] <title...>"
}

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, false)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	ctrl := newController(cfg, svc, errOut)
	form, err := ctrl.OpenCreate()
	if err != nil {
		return reportError(errOut, err)
	}
	form.Title = title
	c.fields.applyTo(&form)

	if err := ctrl.Submit(ctx, form); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg, out)
}
