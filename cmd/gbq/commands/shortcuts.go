// Package commands provides the CLI commands for the go-branch-query tool.
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-branch-query/internal/config"
	"github.com/l3aro/go-branch-query/internal/log"
	"github.com/l3aro/go-branch-query/internal/scanner"
	"github.com/l3aro/go-branch-query/pkg/cache"
	"github.com/l3aro/go-branch-query/pkg/cfg"
	"github.com/l3aro/go-branch-query/pkg/dom"
	"github.com/l3aro/go-branch-query/pkg/shortcut"
)

const cacheFileName = "results.cache"

// shortcutsCmd represents the shortcuts command
var shortcutsCmd = &cobra.Command{
	Use:   "shortcuts <path> [function]",
	Short: "Detect short-circuit branch chains",
	Long: `Analyzes the control flow graphs of Go functions and reports the branch
chains that short-circuit boolean expressions compile into.

The path may be a single .go file or a directory; directories are walked
recursively, respecting .gbqignore patterns. An optional function name
restricts the analysis to functions with that name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		function := ""
		if len(args) == 2 {
			function = args[1]
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		skipTests, _ := cmd.Flags().GetBool("skip-tests")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		trace, _ := cmd.Flags().GetBool("trace")

		return runShortcuts(path, function, jsonOutput, verbose, skipTests, noCache, trace)
	},
}

// fileResult pairs a file with the results of its functions.
type fileResult struct {
	File    string            `json:"file"`
	Results []shortcut.Result `json:"results"`
}

// runReport is the top-level JSON payload for a shortcuts run.
type runReport struct {
	Files  []fileResult    `json:"files"`
	Totals shortcut.Totals `json:"totals"`
}

func runShortcuts(path, function string, jsonOutput, verbose, skipTests, noCache, trace bool) error {
	cfgFile, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.Default()
	if verbose || cfgFile.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	jsonOutput = jsonOutput || cfgFile.JSONOutput

	// The result cache only applies to whole-file analysis; a function
	// filter would store partial results under the full-file key.
	var results *cache.ResultCache
	cachePath := filepath.Join(cfgFile.CacheDir, cacheFileName)
	if cfgFile.CacheEnabled && !noCache && function == "" {
		results = cache.New(cache.Options{MaxEntries: cfgFile.CacheMaxEntries})
		if err := results.LoadFile(cachePath); err != nil {
			logger.Warn("could not load result cache", "path", cachePath, "error", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat path: %w", err)
	}

	var files []scanner.FileInfo
	if info.IsDir() {
		var spinner *log.ProgressSpinner
		if !jsonOutput && log.IsTTY() {
			spinner = log.NewProgressSpinner("Scanning " + path)
			spinner.Start()
		}
		opts := scanner.DefaultOptions()
		opts.SkipTests = skipTests
		opts.MaxFileSize = cfgFile.MaxFileSize
		files, err = scanner.ScanWithOptions(path, opts)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return fmt.Errorf("scanning directory: %w", err)
		}
		logger.Debug("scan complete", "files", len(files))
	} else {
		if !scanner.IsGoSource(info.Name()) {
			return fmt.Errorf("unsupported file type: %s (only .go files supported)", path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("getting absolute path: %w", err)
		}
		files = []scanner.FileInfo{{Path: path, FullPath: abs, Size: info.Size()}}
	}

	report := runReport{}
	for _, f := range files {
		res, err := analyzeFile(f.FullPath, function, cfgFile.MaxFileSize, results, logger)
		if err != nil {
			if info.IsDir() {
				logger.Warn("skipping file", "file", f.Path, "error", err)
				continue
			}
			return err
		}
		if res == nil {
			continue
		}
		report.Files = append(report.Files, fileResult{File: f.Path, Results: res})
		for i := range res {
			report.Totals.Add(&res[i])
		}
	}

	if results != nil {
		if err := results.SaveFile(cachePath); err != nil {
			logger.Warn("could not save result cache", "path", cachePath, "error", err)
		}
		logger.Debug("cache stats", "entries", results.Len(), "hit_rate", results.HitRate())
	}

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printReport(&report, trace)
	return nil
}

// analyzeFile runs the detector over every function in the file, or only the
// named one. A nil result with nil error means the file was skipped.
func analyzeFile(fullPath, function string, maxSize int64, results *cache.ResultCache, logger log.Logger) ([]shortcut.Result, error) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if maxSize > 0 && int64(len(content)) > maxSize {
		logger.Debug("file exceeds max size", "file", fullPath, "size", len(content))
		return nil, nil
	}

	key := cache.Key(content)
	if results != nil {
		if cached, found := results.Get(key); found {
			logger.Debug("cache hit", "file", fullPath)
			return cached, nil
		}
	}

	var fns []*cfg.Function
	if function != "" {
		fn, err := cfg.ExtractGo(fullPath, function)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				logger.Debug("function not in file", "file", fullPath, "function", function)
				return nil, nil
			}
			return nil, fmt.Errorf("extracting CFG: %w", err)
		}
		fns = []*cfg.Function{fn}
	} else {
		fns, err = cfg.ExtractGoAll(fullPath)
		if err != nil {
			return nil, fmt.Errorf("extracting CFGs: %w", err)
		}
	}

	var out []shortcut.Result
	for _, fn := range fns {
		res, err := shortcut.Analyze(fn, dom.New(fn))
		if err != nil {
			logger.Warn("analysis failed", "function", fn.Name, "error", err)
			continue
		}
		out = append(out, *res)
	}

	if results != nil {
		results.Set(key, fullPath, out)
	}
	return out, nil
}

// printReport renders the human-readable report.
func printReport(report *runReport, trace bool) {
	for _, fr := range report.Files {
		for i := range fr.Results {
			r := &fr.Results[i]
			if r.TotalShortcutSets == 0 && r.FailedVerifications == 0 {
				continue
			}
			if trace && r.Trace != "" {
				fmt.Print(r.Trace)
			}
			fmt.Printf("%s: func %s: %d shortcuts in %d sets", fr.File, r.Function, r.TotalShortcuts, r.TotalShortcutSets)
			if r.FailedVerifications > 0 {
				fmt.Printf(" (%d failed verifications)", r.FailedVerifications)
			}
			fmt.Println()
		}
	}

	fmt.Printf("\nFunctions analyzed:   %d\n", report.Totals.Functions)
	fmt.Printf("Shortcut sets:        %d\n", report.Totals.ShortcutSets)
	fmt.Printf("Shortcuts:            %d\n", report.Totals.Shortcuts)
	fmt.Printf("Failed verifications: %d\n", report.Totals.FailedVerifications)
}

func init() {
	shortcutsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	shortcutsCmd.Flags().Bool("verbose", false, "Enable debug logging")
	shortcutsCmd.Flags().Bool("skip-tests", false, "Skip _test.go files when scanning a directory")
	shortcutsCmd.Flags().Bool("no-cache", false, "Bypass the result cache")
	shortcutsCmd.Flags().BoolP("trace", "t", false, "Print chain dumps for every detected set")
	RootCmd.AddCommand(shortcutsCmd)
}
