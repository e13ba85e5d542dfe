package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireExerciseID validates that exactly one exercise_id argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireExerciseID(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <exercise_id>

Usage: %s

Example:
  %s linux-basics

Use 'termsim exercises list' to see available exercises.`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// OptionalExerciseID accepts zero or one exercise_id argument.
func OptionalExerciseID(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("accepts at most 1 arg(s), received %d", len(args))
	}
	return nil
}
