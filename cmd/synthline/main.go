// Package main is the entry point for the synthline CLI.
package main

import (
	"os"

	"github.com/synthline-labs/synthline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
