package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type askCmd struct {
	csv  bool
	full bool
}

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "ask a natural language question" }
func (*askCmd) Usage() string {
	return `uiq ask [-csv] [-full] <question>

  Compiles the question into a query plan, executes it against the
  unified account view and prints the answer.

Usage Examples:
# Ask for the insight directly.
$ uiq ask "top 5 accounts by revenue with open P1 issues"

# Export the matching rows as CSV.
$ uiq ask -csv "list accounts in Europe renewing this quarter"

`
}

func (c *askCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.csv, "csv", false, "Print the result rows as CSV")
	f.BoolVar(&c.full, "full", false, "Print the full response, plan and trace included")
}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	question := strings.TrimSpace(strings.Join(f.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Error: no question given")
		return subcommands.ExitUsageError
	}

	format := ""
	if c.csv {
		format = "csv"
	}

	svc := newService()
	resp, err := newAgent(ctx, svc).Query(ctx, question, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	for _, w := range resp.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	if c.full {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}

	if c.csv {
		if s, ok := resp.Result.(string); ok {
			fmt.Print(s)
			return subcommands.ExitSuccess
		}
	}

	if resp.Answer != "" {
		fmt.Println(resp.Answer)
	}
	out, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}
