// Package main is the entry point for the sigil-connect CLI.
package main

import (
	"os"

	"github.com/mrz1836/sigil-connect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
