package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ferrary7/unifyiq-aryan/renderer"
	"github.com/google/subcommands"
)

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the portfolio-wide issue summary" }
func (*summaryCmd) Usage() string {
	return `uiq summary

  Prints the open issue exposure for each priority: accounts impacted,
  total open issues and the median ARR of the impacted accounts.

`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := newService().Summary(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSummary(s))
	return subcommands.ExitSuccess
}
