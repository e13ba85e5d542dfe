package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/darwinyusef/termsim/internal/commands"
	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/internal/services"
	"github.com/darwinyusef/termsim/internal/tui/components"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

const maxScrollback = 2000

type mode int

const (
	modeShell mode = iota
	modePicker
	modeEditor
	modeBusy
)

// Config selects what the terminal starts with.
type Config struct {
	// ExerciseID is loaded on start. When empty and Catalog is not, a picker
	// is shown; with neither the terminal starts in free mode.
	ExerciseID string
	// Resume restores saved progress for the chosen exercise.
	Resume  bool
	Catalog []termsim.ExerciseSummary
}

// status is read from the manager off the UI goroutine, after each
// operation, so that View never waits on a running validation.
type status struct {
	title    string
	step     termsim.Step
	hasStep  bool
	progress services.ProgressInfo
	points   int
	user     string
	cwd      string
}

func snapshot(mgr *services.ExerciseManager) status {
	s := status{
		progress: mgr.Progress(),
		points:   mgr.TotalPoints(),
		user:     mgr.Shell().Env()["USER"],
		cwd:      mgr.Shell().Commands().FileSystem().CurrentPath(),
	}
	if ex := mgr.Exercise(); ex != nil {
		s.title = ex.Title
	}
	s.step, s.hasStep = mgr.CurrentStep()
	if s.user == "" {
		s.user = termsim.DefaultUser
	}
	return s
}

// feed buffers bus events until the operation that produced them returns.
type feed struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *feed) handle(_ context.Context, e events.Event) {
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
}

func (f *feed) drain() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.events
	f.events = nil
	return out
}

type loadedMsg struct {
	err     error
	resumed bool
	events  []events.Event
	status  status
}

type submittedMsg struct {
	result commands.Result
	events []events.Event
	status status
}

// Model is the bubbletea model of the simulated terminal.
type Model struct {
	ctx         context.Context
	mgr         *services.ExerciseManager
	feed        *feed
	unsubscribe func()
	resume      bool

	keys     KeyMap
	help     help.Model
	input    textinput.Model
	output   viewport.Model
	editor   textarea.Model
	bar      progress.Model
	spinner  components.Spinner
	picker   components.Selector
	complete *components.Completer

	mode     mode
	lines    []string
	pending  commands.EditorRequest
	status   status
	initial  tea.Cmd
	width    int
	height   int
	quitting bool
}

// NewModel builds the terminal over mgr, listening to bus for exercise
// events. Call Close when done to drop the subscription.
func NewModel(ctx context.Context, mgr *services.ExerciseManager, bus *events.Bus, cfg Config) Model {
	f := &feed{}

	input := textinput.New()
	input.CharLimit = 1024
	input.Focus()

	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.CharLimit = 0

	m := Model{
		ctx:         ctx,
		mgr:         mgr,
		feed:        f,
		unsubscribe: bus.SubscribeAll(f.handle),
		resume:      cfg.Resume,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		input:       input,
		output:      viewport.New(80, 20),
		editor:      editor,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30)),
		spinner:     components.NewSpinner(),
		complete:    components.NewCompleter(mgr.Shell().Commands().FileSystem(), commandNames()),
		lines:       Welcome(),
		status:      snapshot(mgr),
	}

	switch {
	case cfg.ExerciseID != "":
		m.mode = modeBusy
		m.initial = tea.Batch(m.spinner.Start("Loading exercise..."), m.load(cfg.ExerciseID))
	case len(cfg.Catalog) > 0:
		m.mode = modePicker
		m.picker = components.NewSelector("Choose an exercise", pickerOptions(cfg.Catalog))
	default:
		m.mode = modeShell
		m.lines = append(m.lines, MutedStyle.Render("No exercise loaded. Free mode."), "")
	}
	m.refresh()
	return m
}

func commandNames() []string {
	names := []string{"help", "history", "exit"}
	for _, k := range commands.Kinds() {
		names = append(names, k.String())
	}
	return names
}

func pickerOptions(list []termsim.ExerciseSummary) []components.Option {
	opts := make([]components.Option, 0, len(list))
	for _, s := range list {
		opts = append(opts, components.Option{
			Label:       s.Title,
			Description: strings.Join(nonEmpty(s.Category, s.Difficulty), " "+SymbolBullet+" "),
			Value:       s.ID,
		})
	}
	return opts
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Close unsubscribes from the event bus.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initial)
}

func (m Model) load(id string) tea.Cmd {
	ctx, mgr, f, resume := m.ctx, m.mgr, m.feed, m.resume
	return func() tea.Msg {
		var (
			err     error
			resumed bool
		)
		if resume {
			_, resumed, err = mgr.ResumeExercise(ctx, id)
		} else {
			_, err = mgr.LoadExercise(ctx, id)
		}
		return loadedMsg{err: err, resumed: resumed, events: f.drain(), status: snapshot(mgr)}
	}
}

func (m Model) submit(line string) tea.Cmd {
	ctx, mgr, f := m.ctx, m.mgr, m.feed
	return func() tea.Msg {
		res, _ := mgr.Submit(ctx, line)
		return submittedMsg{result: res, events: f.drain(), status: snapshot(mgr)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case loadedMsg:
		m.spinner.Stop()
		m.mode = modeShell
		m.status = msg.status
		if msg.resumed {
			m.appendLines(MutedStyle.Render("Resumed from saved progress."))
		}
		m.appendEvents(msg.events)
		if msg.err != nil && len(msg.events) == 0 {
			m.appendLines(ErrorStyle.Render("Error: " + msg.err.Error()))
		}
		m.refresh()
		return m, nil

	case submittedMsg:
		m.spinner.Stop()
		m.status = msg.status
		if req, ok := msg.result.Editor(); ok {
			m.appendEvents(msg.events)
			return m, m.openEditor(req)
		}
		m.mode = modeShell
		if msg.result.Text() == termsim.ClearScreen {
			m.lines = nil
		} else {
			m.appendLines(FormatOutput(msg.result.Text())...)
		}
		m.appendEvents(msg.events)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeBusy:
		m.spinner, cmd = m.spinner.Update(msg)
	case modeEditor:
		m.editor, cmd = m.editor.Update(msg)
	case modeShell:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.mode {
	case modePicker:
		m.picker, cmd = m.picker.Update(msg)
		switch {
		case m.picker.Submitted():
			m.mode = modeBusy
			return m, tea.Batch(m.spinner.Start("Loading exercise..."), m.load(m.picker.Value()))
		case m.picker.Cancelled():
			m.mode = modeShell
			m.appendLines(MutedStyle.Render("No exercise loaded. Free mode."), "")
			m.refresh()
		}
		return m, cmd

	case modeEditor:
		switch {
		case key.Matches(msg, m.keys.EditorSave):
			res := m.mgr.CommitEdit(m.pending, m.editor.Value())
			m.appendLines(FormatOutput(res.Text())...)
			m.status = snapshot(m.mgr)
			m.closeEditor()
			return m, nil
		case key.Matches(msg, m.keys.EditorExit):
			m.closeEditor()
			return m, nil
		}
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd

	case modeBusy:
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		line := m.input.Value()
		m.appendLines(m.input.Prompt + line)
		m.input.Reset()
		m.complete.Reset()
		if strings.TrimSpace(line) == "exit" {
			m.quitting = true
			return m, tea.Quit
		}
		m.mode = modeBusy
		m.refresh()
		return m, tea.Batch(m.spinner.Start("Running..."), m.submit(line))

	case key.Matches(msg, m.keys.HistoryUp):
		if prev, ok := m.mgr.Shell().Previous(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.HistoryDn):
		m.input.SetValue(m.mgr.Shell().Next())
		m.input.CursorEnd()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		m.input.SetValue(m.complete.Next(m.input.Value()))
		m.input.CursorEnd()
		return m, nil

	case key.Matches(msg, m.keys.Hint):
		hint := m.status.step.Hint
		switch {
		case !m.status.hasStep:
			hint = "No step in progress."
		case hint == "":
			hint = "No hint for this step."
		default:
			hint = "Hint: " + hint
		}
		m.appendLines(MutedStyle.Render(hint))
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.lines = nil
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	m.complete.Reset()
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openEditor(req commands.EditorRequest) tea.Cmd {
	m.mode = modeEditor
	m.pending = req
	m.input.Blur()
	m.editor.SetValue(req.Content)
	return m.editor.Focus()
}

func (m *Model) closeEditor() {
	m.editor.Blur()
	m.editor.Reset()
	m.pending = commands.EditorRequest{}
	m.mode = modeShell
	m.input.Focus()
	m.refresh()
}

func (m *Model) appendLines(lines ...string) {
	m.lines = append(m.lines, lines...)
	if over := len(m.lines) - maxScrollback; over > 0 {
		m.lines = m.lines[over:]
	}
}

func (m *Model) appendEvents(evs []events.Event) {
	for _, e := range evs {
		m.appendLines(FormatEvent(e)...)
	}
}

// refresh pushes scrollback and status into the widgets.
func (m *Model) refresh() {
	m.input.Prompt = Prompt(m.status.user, m.status.cwd)
	if m.width > 0 {
		m.resize(m.width, m.height)
	}
	m.output.SetContent(strings.Join(m.lines, "\n"))
	m.output.GotoBottom()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	headerHeight := lipgloss.Height(m.headerView())
	footerHeight := 2 // prompt and help line
	m.output.Width = width
	m.output.Height = max(height-headerHeight-footerHeight, 1)

	m.input.Width = max(width-lipgloss.Width(m.input.Prompt)-1, 10)
	m.editor.SetWidth(width)
	m.editor.SetHeight(max(height-2, 3))
	m.bar.Width = min(max(width/3, 10), 40)
	m.help.Width = width
	m.picker.SetHeight(height)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case modePicker:
		return m.picker.View()
	case modeEditor:
		return m.editorView()
	}

	footer := m.input.View()
	if m.mode == modeBusy {
		footer = m.spinner.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.output.View(),
		footer,
		m.help.View(m.keys),
	)
}

func (m Model) headerView() string {
	if m.status.title == "" {
		return HeaderStyle.Render(TitleStyle.Render("Terminal Simulator") + "  " + MutedStyle.Render("free mode"))
	}

	p := m.status.progress
	line := fmt.Sprintf("%s  %s  %s",
		TitleStyle.Render(m.status.title),
		m.bar.ViewAs(float64(p.Percent)/100),
		MutedStyle.Render(fmt.Sprintf("%d/%d %s %d pts", p.Current, p.Total, SymbolBullet, m.status.points)),
	)
	instruction := SuccessStyle.Render("Exercise completed!")
	if m.status.hasStep {
		instruction = InstructionStyle.Render(m.status.step.Instruction)
	}
	return HeaderStyle.Render(line + "\n" + instruction)
}

func (m Model) editorView() string {
	title := EditorTitleStyle.Width(max(m.width, 20)).Render("GNU nano  " + m.pending.Filename)
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.editor.View(),
		m.help.View(editorKeys(m.keys)),
	)
}
