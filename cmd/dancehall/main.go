// Package main provides the entry point for the dancehall CLI.
package main

import (
	"fmt"
	"os"

	"github.com/olsonja88/ICS499-Bears/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
