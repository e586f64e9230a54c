package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gbq",
	Short: "go-branch-query - Short-circuit branch chain detection",
	Long: `go-branch-query detects the branch chains that short-circuit boolean
expressions compile into, by analyzing the control flow graphs of Go functions.

Commands:
  shortcuts   Detect short-circuit branch chains in a file or project
  cfg         Show the control flow graph of a function
  init        Initialize gbq configuration interactively

Use "gbq [command] --help" for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}
