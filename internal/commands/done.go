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
	Register(&MoveCmd{})
	Register(&DoneCmd{})
}

// MoveCmd implements the move command: the CLI form of dragging a card.
type MoveCmd struct{}

func (c *MoveCmd) Name() string                   { return "move" }
func (c *MoveCmd) Aliases() []string              { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string               { return "Move a task to another column" }
func (c *MoveCmd) Usage() string                  { return "taskboard move <id> <pending|in-progress|done>" }
func (c *MoveCmd) NeedsService() bool             { return true }
func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: task id and status required")
		return exitcode.UserError
	}
	status, valid := service.ParseStatus(args[1])
	if !valid {
		fmt.Fprintf(errOut, "error: invalid status: %s\n", args[1])
		return exitcode.UserError
	}
	return runMove(ctx, cfg, svc, args[0], status, out, errOut)
}

// DoneCmd implements the done command, a shortcut for move <id> done.
type DoneCmd struct{}

func (c *DoneCmd) Name() string                   { return "done" }
func (c *DoneCmd) Aliases() []string              { return nil }
func (c *DoneCmd) Synopsis() string               { return "Mark a task done" }
func (c *DoneCmd) Usage() string                  { return "taskboard done <id>" }
func (c *DoneCmd) NeedsService() bool             { return true }
func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, valid := singleID(args, errOut)
	if !valid {
		return exitcode.UserError
	}
	return runMove(ctx, cfg, svc, id, service.StatusDone, out, errOut)
}

// runMove loads the board so the move goes through the same optimistic path
// as the interactive front ends.
func runMove(ctx context.Context, cfg *config.Config, svc service.Service, id string, to service.Status, out, errOut io.Writer) int {
	ctrl := newController(cfg, svc, errOut)
	if err := ctrl.Load(ctx); err != nil {
		return reportError(errOut, err)
	}
	if err := ctrl.Move(ctx, id, to); err != nil {
		return reportTaskError(errOut, id, err)
	}
	return printOK(cfg, out)
}
