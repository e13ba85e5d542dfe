package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/tui"
)

var exercisesCmd = &cobra.Command{
	Use:     "exercises",
	Aliases: []string{"ex"},
	Short:   "Browse the exercise catalog",
}

var exercisesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available exercises",
	Args:  cobra.NoArgs,
	RunE:  runExercisesList,
}

var exercisesShowCmd = &cobra.Command{
	Use:               "show <exercise_id>",
	Short:             "Describe an exercise and its steps",
	Args:              RequireExerciseID,
	ValidArgsFunction: completeExerciseIDs,
	RunE:              runExercisesShow,
}

func init() {
	exercisesCmd.AddCommand(exercisesListCmd)
	exercisesCmd.AddCommand(exercisesShowCmd)
	rootCmd.AddCommand(exercisesCmd)
}

func runExercisesList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	list, err := source.List(commandContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No exercises available.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tDIFFICULTY")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Category, s.Difficulty)
	}
	return w.Flush()
}

func runExercisesShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	ex, err := source.Get(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderMarkdown(tui.ExerciseMarkdown(ex), tui.TerminalWidth(80)))
	return nil
}
