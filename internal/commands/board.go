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
)

func init() {
	Register(&BoardCmd{})
	Register(&SummaryCmd{})
}

// BoardCmd prints the three status columns. It is what runs with no
// arguments.
type BoardCmd struct {
	filters filterFlags
	width   int
	plain   bool
}

func (c *BoardCmd) Name() string       { return "board" }
func (c *BoardCmd) Aliases() []string  { return nil }
func (c *BoardCmd) Synopsis() string   { return "Print the board" }
func (c *BoardCmd) NeedsService() bool { return true }
func (c *BoardCmd) Usage() string {
	return "taskboard board [--plain] [--width <n>] [-t <text>] [--status <s>] [--priority <p>]"
}

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filters.register(fs)
	fs.IntVar(&c.width, "width", output.DefaultWidth, "")
	fs.BoolVar(&c.plain, "plain", false, "")
}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.width < 1 {
		fmt.Fprintf(errOut, "error: invalid width: %d\n", c.width)
		return exitcode.UserError
	}

	ctrl, code := c.filters.load(ctx, cfg, svc, errOut)
	if ctrl == nil {
		return code
	}

	bv := ctrl.Board()
	if c.plain {
		output.FormatColumns(out, bv.Columns)
		output.FormatSummary(out, bv.Summary)
		return exitcode.Success
	}
	output.WriteBoard(out, bv, output.BoardOptions{Width: c.width})
	return exitcode.Success
}

// SummaryCmd prints the counters only.
type SummaryCmd struct {
	filters filterFlags
}

func (c *SummaryCmd) Name() string       { return "summary" }
func (c *SummaryCmd) Aliases() []string  { return []string{"stats"} }
func (c *SummaryCmd) Synopsis() string   { return "Print task counts per status" }
func (c *SummaryCmd) NeedsService() bool { return true }
func (c *SummaryCmd) Usage() string {
	return "taskboard summary [-t <text>] [--status <s>] [--priority <p>]"
}

func (c *SummaryCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filters.register(fs)
}

func (c *SummaryCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctrl, code := c.filters.load(ctx, cfg, svc, errOut)
	if ctrl == nil {
		return code
	}
	output.FormatSummary(out, ctrl.Board().Summary)
	return exitcode.Success
}
