package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/config"
	"github.com/darwinyusef/termsim/internal/progress"
	"github.com/darwinyusef/termsim/internal/tui"
	"github.com/darwinyusef/termsim/internal/tui/wizards"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a termsim.yaml configuration",
	Long: `Init writes termsim.yaml into the given directory (default: the current one).
In a terminal a short wizard asks where exercises come from and where progress
is stored; otherwise a configuration with the built-in catalog and a file
progress store is written.`,
	Example: `  termsim init
  termsim init ./course --force`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveFilterDirs
	},
	RunE: runInit,
}

var initFlags struct {
	force bool
}

func runConfigWizard() (wizards.ConfigResult, error) {
	m, err := tea.NewProgram(wizards.NewConfigWizard()).Run()
	if err != nil {
		return wizards.ConfigResult{}, fmt.Errorf("setup wizard: %w", err)
	}
	return m.(wizards.ConfigWizard).Result(), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initFlags.force, "force", "f", false, "Overwrite an existing termsim.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	path := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(path); err == nil && !initFlags.force {
		return fmt.Errorf("%s already exists\n\nTip: use --force to overwrite it", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := config.Config{
		Exercises: config.ExercisesConfig{Source: config.SourceBuiltin},
		Progress:  config.ProgressConfig{Store: progress.KindFile},
	}
	if tui.IsInteractive() {
		res, err := runConfigWizard()
		if err != nil {
			return err
		}
		if res.Cancelled {
			fmt.Fprintln(cmd.ErrOrStderr(), "Setup cancelled; nothing written.")
			return nil
		}
		cfg = res.Config
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
