// Command flowsim runs bounded-buffer producer/consumer simulations and
// prints sales-report tables from CSV data.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "flowsim",
		Usage: "bounded-buffer producer/consumer simulator with sales reporting",
		Commands: []*cli.Command{
			runCommand(),
			reportCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "flowsim: %v\n", err)
		os.Exit(1)
	}
}
