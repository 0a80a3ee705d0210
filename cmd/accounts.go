package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ferrary7/unifyiq-aryan/renderer"
	"github.com/google/subcommands"
)

type accountsCmd struct {
	limit  int
	offset int
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list unified accounts" }
func (*accountsCmd) Usage() string {
	return `uiq accounts [-limit <n>] [-offset <n>] [<account-id>]

  Prints the unified account view: each account with its issue counters.
  With an account ID, prints that single account and its linked issues.

Usage Examples:
# First page of the unified view.
$ uiq accounts

# One account in detail.
$ uiq accounts A1001

`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 100, "Maximum number of accounts to list")
	f.IntVar(&c.offset, "offset", 0, "Number of accounts to skip")
}

func (c *accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc := newService()

	if id := f.Arg(0); id != "" {
		a, err := svc.Account(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderAccount(a))
		return subcommands.ExitSuccess
	}

	page, err := svc.Accounts(ctx, c.limit, c.offset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderAccounts(page))
	return subcommands.ExitSuccess
}
