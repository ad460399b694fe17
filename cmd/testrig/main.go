// Package main is the entry point for the testrig CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/testrig/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
