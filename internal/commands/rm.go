package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/controller"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. Without --yes it asks on In before
// deleting.
type RmCmd struct {
	yes bool

	// In is where the confirmation answer is read from. Defaults to os.Stdin.
	In io.Reader
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskboard rm [--yes] <id>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

// SetYes skips the confirmation (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, valid := singleID(args, errOut)
	if !valid {
		return exitcode.UserError
	}

	confirm := controller.Confirmed
	if !c.yes {
		confirm = c.prompt(errOut)
	}

	ctrl := newController(cfg, svc, errOut)
	if err := ctrl.Delete(ctx, id, confirm); err != nil {
		if errors.Is(err, controller.ErrCancelled) {
			if !cfg.Quiet {
				fmt.Fprintln(out, "cancelled")
			}
			return exitcode.Success
		}
		return reportTaskError(errOut, id, err)
	}
	return printOK(cfg, out)
}

func (c *RmCmd) prompt(errOut io.Writer) controller.ConfirmFunc {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	return func(question string) bool {
		fmt.Fprintf(errOut, "%s [y/N] ", question)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
