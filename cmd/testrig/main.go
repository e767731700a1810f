// Package main provides the testrig command line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/testrig/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
