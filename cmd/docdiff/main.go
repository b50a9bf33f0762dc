// docdiff compares document exports from the command line or over gRPC
package main

import (
	"errors"
	"os"

	"github.com/fatih/color"

	"github.com/nainya/docdiff/internal/cli"
)

// Set by the linker
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := cli.NewRootCmd(version, commit, date)

	if err := cli.Execute(cmd); err != nil {
		// Differences are a result, not a failure worth printing
		if errors.Is(err, cli.ErrDifferencesFound) {
			os.Exit(1)
		}
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
