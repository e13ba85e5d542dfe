package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/ui"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or reset saved exercise progress",
}

var progressShowCmd = &cobra.Command{
	Use:               "show <exercise_id>",
	Short:             "Print saved progress as JSON",
	Args:              RequireExerciseID,
	ValidArgsFunction: completeExerciseIDs,
	RunE:              runProgressShow,
}

var progressResetCmd = &cobra.Command{
	Use:               "reset <exercise_id>",
	Short:             "Discard saved progress and start the exercise over",
	Long: `Reset discards the saved step and points of an exercise. You are asked
to type the exercise id to confirm; --force skips the prompt after a short
countdown.`,
	Args:              RequireExerciseID,
	ValidArgsFunction: completeExerciseIDs,
	RunE:              runProgressReset,
}

var progressFlags struct {
	force bool
}

// forceCountdown is the --force grace period.
var forceCountdown = termsim.DefaultForceApprovalCountdown

func init() {
	progressResetCmd.Flags().BoolVarP(&progressFlags.force, "force", "f", false, "Skip the confirmation prompt")
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)
	rootCmd.AddCommand(progressCmd)
}

// progressView is the JSON shape printed by `progress show`.
type progressView struct {
	ExerciseID string    `json:"exerciseId"`
	StepIndex  int       `json:"stepIndex"`
	Points     int       `json:"points"`
	SavedAt    time.Time `json:"savedAt"`
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	p, found, err := a.manager.LoadProgress(ctx, args[0])
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(cmd.OutOrStdout(), "No saved progress for %s\n", args[0])
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(progressView{
		ExerciseID: p.ExerciseID,
		StepIndex:  p.StepIndex,
		Points:     p.Points,
		SavedAt:    time.UnixMilli(p.Timestamp).UTC(),
	})
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.source.Get(ctx, args[0]); err != nil {
		return err
	}

	var approver termsim.Approver
	if progressFlags.force {
		approver = ui.NewForcedApprover(cmd.ErrOrStderr(), forceCountdown)
	} else {
		approver = ui.NewInteractiveApprover(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	approved, err := approver.RequestApproval(ctx, args[0])
	if err != nil {
		return err
	}
	if !approved {
		return fmt.Errorf("reset of %s not confirmed", args[0])
	}

	if _, err := a.manager.LoadExercise(ctx, args[0]); err != nil {
		return err
	}
	if err := a.manager.ResetExercise(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Progress for %s reset\n", args[0])
	return nil
}
