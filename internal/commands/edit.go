package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given fields change.
type EditCmd struct {
	fields taskFlags
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Change fields of a task" }
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) Usage() string {
	return "taskboard edit [--title <t>] [-d <text>] [--status <s>] [-p <priority>] [-a <who>] [--due <YYYY-MM-DD>] <id>"
}

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, true)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, valid := singleID(args, errOut)
	if !valid {
		return exitcode.UserError
	}

	ctrl := newController(cfg, svc, errOut)
	form, err := ctrl.OpenEdit(ctx, id)
	if err != nil {
		return reportTaskError(errOut, id, err)
	}
	if !c.fields.applyTo(&form) {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	if err := ctrl.Submit(ctx, form); err != nil {
		return reportTaskError(errOut, id, err)
	}
	return printOK(cfg, out)
}
