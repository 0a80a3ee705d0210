package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ferrary7/unifyiq-aryan/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the UnifyIQ HTTP API" }
func (*serveCmd) Usage() string {
	return `uiq serve [-addr <addr>]

  Runs the HTTP API: the unified accounts listing, the insight reports
  and the natural language query agent.

Usage Examples:
# Serve on the default port.
$ uiq serve

# Serve on another port against a remote source.
$ uiq -base-url https://source.example.com serve -addr :9090

`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", ":8080", "Address to listen on")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := newService()
	srv := server.New(svc, newAgent(ctx, svc))
	if err := srv.ListenAndServe(ctx, c.addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server stopped: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
