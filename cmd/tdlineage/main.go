// Package main provides the tdlineage command-line tool.
package main

import (
	"os"

	"github.com/rezaim0/tdlineage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
