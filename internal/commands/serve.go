package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/logger"
	"taskboard/internal/service"
	"taskboard/internal/tui"
	"taskboard/internal/web"
)

func init() {
	Register(&ServeCmd{})
	Register(&TUICmd{})
}

// ServeCmd runs the web board until interrupted.
type ServeCmd struct {
	addr  string
	title string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return []string{"web"} }
func (c *ServeCmd) Synopsis() string   { return "Serve the board over HTTP" }
func (c *ServeCmd) Usage() string      { return "taskboard serve [--addr <host:port>] [--title <text>]" }
func (c *ServeCmd) NeedsService() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
	fs.StringVar(&c.title, "title", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = cfg.Addr
	}
	if addr == "" {
		addr = config.DefaultAddr
	}

	log := commandLogger(cfg, errOut, "INFO")
	srv, err := web.New(svc, web.Options{Title: c.title, Logger: log.Logger})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	log.InfoContextf(ctx, "serving board on http://%s", addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// TUICmd runs the interactive terminal board.
type TUICmd struct{}

func (c *TUICmd) Name() string                   { return "tui" }
func (c *TUICmd) Aliases() []string              { return []string{"ui"} }
func (c *TUICmd) Synopsis() string               { return "Open the interactive board" }
func (c *TUICmd) Usage() string                  { return "taskboard tui" }
func (c *TUICmd) NeedsService() bool             { return true }
func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Log records would tear the full-screen view.
	if err := tui.Run(ctx, svc, logger.Discard().Logger); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
