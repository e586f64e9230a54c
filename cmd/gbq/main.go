// Package main implements the go-branch-query CLI (gbq).
// It provides commands for detecting short-circuit branch chains in Go
// control flow graphs and inspecting the graphs themselves.
package main

import (
	"os"

	"github.com/l3aro/go-branch-query/cmd/gbq/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Flags().BoolP("version", "v", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`gbq version {{.Version}}
`)
	commands.RootCmd.Version = version

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
