package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestCompleteExerciseIDs(t *testing.T) {
	setupProject(t, "")
	cmd := &cobra.Command{}

	t.Run("returns every id for empty input", func(t *testing.T) {
		completions, directive := completeExerciseIDs(cmd, nil, "")
		assert.Len(t, completions, 3)
		assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	})

	t.Run("filters by prefix and carries the title", func(t *testing.T) {
		completions, _ := completeExerciseIDs(cmd, nil, "lin")
		assert.Equal(t, []string{"linux-basics\tLinux Basics: Navigation"}, completions)
	})

	t.Run("returns empty for non-matching prefix", func(t *testing.T) {
		completions, _ := completeExerciseIDs(cmd, nil, "xyz")
		assert.Empty(t, completions)
	})

	t.Run("completes only the first argument", func(t *testing.T) {
		completions, directive := completeExerciseIDs(cmd, []string{"linux-basics"}, "")
		assert.Nil(t, completions)
		assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	})
}

func TestCompleteExerciseIDs_BadSource(t *testing.T) {
	setupProject(t, "exercises:\n  source: dir\n  dir: missing\n")

	_, directive := completeExerciseIDs(&cobra.Command{}, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveError, directive)
}

func TestFixedCompletions(t *testing.T) {
	complete := fixedCompletions("verbose", "info", "error")

	all, directive := complete(nil, nil, "")
	assert.Equal(t, []string{"verbose", "info", "error"}, all)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	some, _ := complete(nil, nil, "in")
	assert.Equal(t, []string{"info"}, some)
}
