package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

func TestExercisesList_Builtin(t *testing.T) {
	setupProject(t, "")
	out, _ := capture(t, exercisesListCmd, "")

	require.NoError(t, runExercisesList(exercisesListCmd, nil))

	text := out.String()
	assert.Contains(t, text, "ID")
	assert.Contains(t, text, "DIFFICULTY")
	for _, id := range []string{"linux-basics", "file-management", "dockerfile-basics"} {
		assert.Contains(t, text, id)
	}
	assert.Contains(t, text, "Linux Basics: Navigation")
}

func TestExercisesList_Directory(t *testing.T) {
	dir := setupProject(t, "exercises:\n  source: dir\n  dir: catalog\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "catalog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog", "greet.yaml"), []byte(`exercise:
  id: greet
  title: Say hello
  category: shell
  difficulty: beginner
  steps:
    - instruction: Print hello.
      points: 5
      validation:
        type: command_exact
        expected_command: echo hello
`), 0o644))
	out, _ := capture(t, exercisesListCmd, "")

	require.NoError(t, runExercisesList(exercisesListCmd, nil))
	assert.Contains(t, out.String(), "greet")
	assert.Contains(t, out.String(), "Say hello")
	assert.NotContains(t, out.String(), "linux-basics")
}

func TestExercisesList_EmptyDirectory(t *testing.T) {
	dir := setupProject(t, "exercises:\n  source: dir\n  dir: empty\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0o755))
	out, _ := capture(t, exercisesListCmd, "")

	require.NoError(t, runExercisesList(exercisesListCmd, nil))
	assert.Equal(t, "No exercises available.\n", out.String())
}

func TestExercisesList_MissingDirectory(t *testing.T) {
	setupProject(t, "exercises:\n  source: dir\n  dir: nowhere\n")
	capture(t, exercisesListCmd, "")

	err := runExercisesList(exercisesListCmd, nil)
	require.ErrorIs(t, err, termsim.ErrInvalidConfig)
	assert.Equal(t, termsim.ExitConfigError, termsim.ExitCodeForError(err))
}

func TestExercisesShow(t *testing.T) {
	setupProject(t, "")
	out, _ := capture(t, exercisesShowCmd, "")

	require.NoError(t, runExercisesShow(exercisesShowCmd, []string{"linux-basics"}))

	text := out.String()
	assert.Contains(t, text, "# Linux Basics: Navigation")
	assert.Contains(t, text, "Print the directory you are currently in.")
}

func TestExercisesShow_NotFound(t *testing.T) {
	setupProject(t, "")
	capture(t, exercisesShowCmd, "")

	err := runExercisesShow(exercisesShowCmd, []string{"missing"})
	require.ErrorIs(t, err, termsim.ErrExerciseNotFound)
}

func TestExercisesCmd_InvalidConfig(t *testing.T) {
	setupProject(t, "exercises:\n  source: ftp\n")
	capture(t, exercisesListCmd, "")

	err := runExercisesList(exercisesListCmd, nil)
	require.ErrorIs(t, err, termsim.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "invalid configuration")
}
