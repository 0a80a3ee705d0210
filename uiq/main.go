// Command uiq runs the UnifyIQ service and queries it from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/ferrary7/unifyiq-aryan/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command tree for shell completion.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"base-url": predict.Something,
		"timeout":  predict.Something,
	},
	Sub: map[string]*complete.Command{
		"serve": {Flags: map[string]complete.Predictor{
			"addr": predict.Something,
		}},
		"ask": {Flags: map[string]complete.Predictor{
			"csv":  predict.Nothing,
			"full": predict.Nothing,
		}},
		"accounts": {Flags: map[string]complete.Predictor{
			"limit":  predict.Something,
			"offset": predict.Something,
		}},
		"summary": {},
		"topic": {
			Args: predict.Set{"readme", "epics", "insights", "agent", "*"},
		},
		"help":     {},
		"flags":    {},
		"commands": {},
	},
}

func main() {
	// In completion mode this call prints the candidates and exits.
	completion.Complete("uiq")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
