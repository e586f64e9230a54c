package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-branch-query/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gbq configuration interactively",
	Long: `Guides you through setting up gbq configuration step by step.
Creates ~/.gbq/config.yaml with report and cache settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	// === SECTION 1: Reporting ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Verbose logging").
				Description("Log what the analyzer is doing at debug level").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.Verbose),
			huh.NewConfirm().
				Title("JSON output").
				Description("Emit reports as JSON instead of text").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.JSONOutput),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Result cache ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Result cache").
				Description("Cache per-file results so unchanged files are not re-analyzed").
				Affirmative("Enable").
				Negative("Disable").
				Value(&cfg.CacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if cfg.CacheEnabled {
		maxEntries := strconv.Itoa(cfg.CacheMaxEntries)
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cache directory").
					Placeholder(cfg.CacheDir).
					Value(&cfg.CacheDir),
				huh.NewInput().
					Title("Maximum cached files").
					Placeholder(maxEntries).
					Validate(func(s string) error {
						n, err := strconv.Atoi(s)
						if err != nil || n <= 0 {
							return fmt.Errorf("must be a positive number")
						}
						return nil
					}).
					Value(&maxEntries),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if n, err := strconv.Atoi(maxEntries); err == nil {
			cfg.CacheMaxEntries = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveGlobal(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("Configuration saved to ~/.gbq/config.yaml")
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
