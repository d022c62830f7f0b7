// Command chipsim compiles, links and evaluates digital logic chips.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/chipsim/internal/cli"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "chipsim:", err)
		os.Exit(cli.ExitCommandError)
	}

	if err := cli.NewRootCommand(cfg).Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
