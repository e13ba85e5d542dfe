package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play [exercise_id]",
	Short: "Open the interactive terminal",
	Long: `Play opens the full-screen simulated terminal. With an exercise id the
exercise starts immediately; without one a picker lists the catalog.
Press Esc in the picker to practise freely without an exercise.

Keys:
  Enter        run the command
  Up/Down      browse history
  Tab          complete commands and paths
  Ctrl+G       show a hint for the current step
  Ctrl+L       clear the screen
  Ctrl+C       quit
In nano, Ctrl+O saves and Ctrl+X exits.`,
	Example: `  termsim play
  termsim play linux-basics
  termsim play linux-basics --resume`,
	Args:              OptionalExerciseID,
	ValidArgsFunction: completeExerciseIDs,
	RunE:              runPlay,
}

var playFlags struct {
	resume bool
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolVar(&playFlags.resume, "resume", false, "Continue from saved progress")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !tui.IsInteractive() {
		return fmt.Errorf("play requires an interactive terminal\n\nTip: use 'termsim run <exercise_id>' for scripts and pipes")
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx, cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := tui.Config{Resume: playFlags.resume}
	if len(args) == 1 {
		cfg.ExerciseID = args[0]
	} else {
		list, err := a.source.List(ctx)
		if err != nil {
			a.logger.Error("Failed to list exercises: %v", err)
		}
		cfg.Catalog = list
	}

	if err := tui.Run(ctx, a.manager, a.bus, cfg); err != nil {
		return err
	}
	if a.manager.Exercise() != nil {
		if err := a.manager.SaveProgress(ctx); err != nil {
			a.logger.Error("%v", err)
		}
	}
	return nil
}
