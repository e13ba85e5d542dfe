package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinyusef/termsim/internal/commands"
	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/internal/exercises"
	"github.com/darwinyusef/termsim/internal/logging"
	"github.com/darwinyusef/termsim/internal/progress"
	"github.com/darwinyusef/termsim/internal/services"
	"github.com/darwinyusef/termsim/internal/shell"
	"github.com/darwinyusef/termsim/internal/validator"
	"github.com/darwinyusef/termsim/internal/vfs"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

type fixture struct {
	mgr   *services.ExerciseManager
	bus   *events.Bus
	fs    *vfs.FileSystem
	store *progress.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := vfs.New()
	bus := events.NewBus(nil)
	store := progress.NewMemoryStore()
	mgr := services.NewExerciseManager(
		exercises.Builtin(), store, shell.New(commands.NewSet(fs)),
		validator.New(nil), bus, logging.NewNullLogger(),
	)
	return &fixture{mgr: mgr, bus: bus, fs: fs, store: store}
}

func (f *fixture) model(t *testing.T, cfg Config) Model {
	t.Helper()
	m := NewModel(context.Background(), f.mgr, f.bus, cfg)
	t.Cleanup(m.Close)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// enter types line and runs the submission synchronously.
func enter(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeBusy, m.mode)
	return update(t, m, m.submit(line)())
}

func scrollback(m Model) string {
	return strings.Join(m.lines, "\n")
}

func TestModel_FreeModeRunsCommands(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{})
	require.Equal(t, modeShell, m.mode)
	assert.Contains(t, scrollback(m), "Free mode")

	m = enter(t, m, "mkdir projects")
	m = enter(t, m, "cd projects")
	m = enter(t, m, "pwd")

	assert.Equal(t, modeShell, m.mode)
	assert.Contains(t, scrollback(m), "/home/student/projects")
	assert.Equal(t, "/home/student/projects", m.status.cwd)
	assert.Contains(t, m.input.Prompt, "/home/student/projects")
}

func TestModel_LoadsExerciseAndValidates(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{ExerciseID: "linux-basics"})
	require.Equal(t, modeBusy, m.mode)

	m = update(t, m, m.load("linux-basics")())
	require.Equal(t, modeShell, m.mode)
	assert.Equal(t, "Linux Basics: Navigation", m.status.title)
	assert.Contains(t, scrollback(m), "Exercise loaded: Linux Basics: Navigation")
	assert.Contains(t, scrollback(m), "[Step 1]")

	m = enter(t, m, "ls")
	assert.Contains(t, scrollback(m), "✗ Expected: pwd")
	assert.Equal(t, 0, m.status.points)

	m = enter(t, m, "pwd")
	out := scrollback(m)
	assert.Contains(t, out, "+10 points (Total: 10)")
	assert.Contains(t, out, "[Step 2]")
	assert.Equal(t, 10, m.status.points)
	assert.Equal(t, 1, m.status.progress.Current)
	assert.Contains(t, m.View(), "Linux Basics: Navigation")
}

func TestModel_LoadFailureShowsError(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{ExerciseID: "missing"})

	m = update(t, m, m.load("missing")())
	assert.Equal(t, modeShell, m.mode)
	assert.Contains(t, scrollback(m), "Error: Failed to load exercise")
}

func TestModel_PickerLoadsChoice(t *testing.T) {
	f := newFixture(t)
	list, err := exercises.Builtin().List(context.Background())
	require.NoError(t, err)

	m := f.model(t, Config{Catalog: list})
	require.Equal(t, modePicker, m.mode)
	assert.Contains(t, m.View(), "Choose an exercise")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeBusy, m.mode)
	assert.Equal(t, "file-management", m.picker.Value())

	m = update(t, m, m.load(m.picker.Value())())
	assert.Equal(t, "File Management: Create, Edit, Remove", m.status.title)
}

func TestModel_PickerCancelFallsBackToFreeMode(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{Catalog: []termsim.ExerciseSummary{{ID: "x", Title: "X"}}})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeShell, m.mode)
}

func TestModel_ResumeRestoresStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mgr.LoadExercise(ctx, "linux-basics")
	require.NoError(t, err)
	f.mgr.Submit(ctx, "pwd")

	m := f.model(t, Config{ExerciseID: "linux-basics", Resume: true})
	m.feed.drain()
	m = update(t, m, m.load("linux-basics")())

	assert.Contains(t, scrollback(m), "Resumed from saved progress.")
	assert.Equal(t, 10, m.status.points)
	assert.Equal(t, 1, m.status.progress.Current)
}

func TestModel_NanoEditsFile(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{})

	m = enter(t, m, "nano notes.txt")
	require.Equal(t, modeEditor, m.mode)
	assert.Contains(t, m.View(), "GNU nano  notes.txt")

	m.editor.SetValue("first line")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, modeShell, m.mode)

	content, err := f.fs.ReadFile("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "first line", content)
}

func TestModel_NanoExitDiscards(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{})

	m = enter(t, m, "nano draft.txt")
	m.editor.SetValue("unsaved")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})

	assert.Equal(t, modeShell, m.mode)
	assert.False(t, f.fs.Exists("draft.txt"))
}

func TestModel_ClearWipesScrollback(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{})

	m = enter(t, m, "echo hello")
	require.Contains(t, scrollback(m), "hello")

	m = enter(t, m, "clear")
	assert.Empty(t, m.lines)
}

func TestModel_HistoryNavigation(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{})

	m = enter(t, m, "pwd")
	m = enter(t, m, "ls")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "ls", m.input.Value())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "pwd", m.input.Value())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "ls", m.input.Value())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "", m.input.Value())
}

func TestModel_TabCompletes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.CreateDirectory("projects"))
	m := f.model(t, Config{})

	m.input.SetValue("cd pro")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "cd projects/", m.input.Value())
}

func TestModel_HintKey(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Contains(t, scrollback(m), "No step in progress.")

	m = f.model(t, Config{ExerciseID: "linux-basics"})
	m = update(t, m, m.load("linux-basics")())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Contains(t, scrollback(m), "Hint: The command is short for 'print working directory'.")
}

func TestModel_ExitQuits(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{})

	m.input.SetValue("exit")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "", next.View())
}

func TestModel_BusyIgnoresKeys(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, Config{ExerciseID: "linux-basics"})
	require.Equal(t, modeBusy, m.mode)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, "", m.input.Value())
}

func TestFormatOutput(t *testing.T) {
	assert.Nil(t, FormatOutput(""))
	assert.Nil(t, FormatOutput(termsim.ClearScreen))
	assert.Equal(t, []string{"Hello student"}, FormatOutput("Hello student\n"))
	assert.Equal(t, []string{"a", "b"}, FormatOutput("a\nb"))
}

func TestFormatEvent(t *testing.T) {
	lines := FormatEvent(events.New(events.TypeStepCompleted, events.StepCompleted{Step: 1, Points: 10, TotalPoints: 25, Feedback: "Correct!"}))
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "✓ Correct!")
	assert.Contains(t, lines[1], "+10 points (Total: 25)")

	assert.Nil(t, FormatEvent(events.Event{Type: "custom"}))
}

func TestExerciseMarkdown(t *testing.T) {
	ex, err := exercises.Builtin().Get(context.Background(), "linux-basics")
	require.NoError(t, err)

	md := ExerciseMarkdown(ex)
	assert.Contains(t, md, "# Linux Basics: Navigation")
	assert.Contains(t, md, "## Steps (50 points)")
	assert.Contains(t, md, "1. ")
	assert.Equal(t, md, RenderMarkdown(md, 80), "no terminal in tests")
}
