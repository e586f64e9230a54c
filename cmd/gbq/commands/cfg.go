package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-branch-query/pkg/cfg"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <function>",
	Short: "Show the control flow graph of a function",
	Long: `Extracts the control flow graph (CFG) for a specific function in a Go file.
Outputs the blocks, their statements, and the edges between them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}
		if !strings.HasSuffix(filePath, ".go") {
			return fmt.Errorf("unsupported file type: %s (only .go files supported)", filePath)
		}

		fn, err := cfg.ExtractGo(filePath, functionName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				return fmt.Errorf("function %q not found in %s", functionName, filePath)
			}
			return fmt.Errorf("extracting CFG: %w", err)
		}

		fnInfo := cfg.Snapshot(fn)

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(fnInfo, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printFunctionInfo(fnInfo)
		return nil
	},
}

// printFunctionInfo prints CFG information in human-readable format.
func printFunctionInfo(info *cfg.FunctionInfo) {
	fmt.Printf("=== CFG for function: %s ===\n", info.FunctionName)
	fmt.Printf("Entry Block: %s\n", info.EntryBlock)
	fmt.Printf("\nBlocks (%d):\n", len(info.Blocks))
	for _, block := range info.Blocks {
		fmt.Printf("  %s (%s)\n", block.Name, block.Terminator)
		for _, stmt := range block.Statements {
			fmt.Printf("    %s\n", stmt)
		}
	}

	fmt.Println("\nEdges:")
	for _, block := range info.Blocks {
		for _, succ := range block.Successors {
			fmt.Printf("  %s --> %s\n", block.Name, succ)
		}
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(cfgCmd)
}
