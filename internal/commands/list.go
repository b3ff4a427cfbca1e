package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/view"
)

func init() {
	Register(&ListCmd{})
	Register(&ShowCmd{})
}

// ListCmd implements the list command: one line per task in service order.
type ListCmd struct {
	filters filterFlags
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) NeedsService() bool { return true }
func (c *ListCmd) Usage() string {
	return "taskboard list [-t <text>] [--status <s>] [--priority <p>]"
}

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filters.register(fs)
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	ctrl, code := c.filters.load(ctx, cfg, svc, errOut)
	if ctrl == nil {
		return code
	}

	tasks := view.Filter(ctrl.Tasks(), ctrl.Filters())
	if len(tasks) == 0 && cfg.Quiet {
		return exitcode.Success
	}
	output.FormatList(out, tasks)
	return exitcode.Success
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string                   { return "show" }
func (c *ShowCmd) Aliases() []string              { return nil }
func (c *ShowCmd) Synopsis() string               { return "Print one task in full" }
func (c *ShowCmd) Usage() string                  { return "taskboard show <id>" }
func (c *ShowCmd) NeedsService() bool             { return true }
func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, valid := singleID(args, errOut)
	if !valid {
		return exitcode.UserError
	}
	task, err := svc.Get(ctx, id)
	if err != nil {
		return reportTaskError(errOut, id, err)
	}
	output.FormatTask(out, task)
	return exitcode.Success
}
