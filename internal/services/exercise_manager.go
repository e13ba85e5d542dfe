package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/darwinyusef/termsim/internal/commands"
	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/internal/shell"
	"github.com/darwinyusef/termsim/internal/validator"
	"github.com/darwinyusef/termsim/internal/vfs"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Feedback used when neither the validator nor the step supplies any.
const (
	DefaultCorrectFeedback = "Correct!"
	DefaultWrongFeedback   = "Incorrect. Try again."

	noExerciseFeedback = "No exercise loaded"
	noStepFeedback     = "No more steps"
)

// StepValidator checks one submission against one step.
type StepValidator interface {
	Validate(ctx context.Context, command string, step termsim.Step, fs validator.FileSystem, env termsim.Environment) termsim.ValidationResult
}

// ProgressInfo summarizes how far through the current exercise the session is.
type ProgressInfo struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// ManagerOption configures an ExerciseManager.
type ManagerOption func(*ExerciseManager)

// WithManagerClock overrides the clock used to stamp saved progress.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *ExerciseManager) {
		m.now = now
	}
}

// WithBaseEnvironment sets the environment every exercise starts from before
// its initial_state env is merged in.
func WithBaseEnvironment(env termsim.Environment) ManagerOption {
	return func(m *ExerciseManager) {
		m.baseEnv = env.Clone()
	}
}

// ExerciseManager drives one session through an exercise: it applies the
// initial state, validates submissions, awards points, persists progress and
// publishes events describing each transition.
//
// All methods are serialized by an internal mutex, so Submit pairs a shell
// command with its validation atomically.
type ExerciseManager struct {
	mu sync.Mutex

	source    termsim.ExerciseSource
	store     termsim.ProgressStore
	shell     *shell.Shell
	fs        *vfs.FileSystem
	validator StepValidator
	bus       *events.Bus
	logger    termsim.Logger
	now       func() time.Time
	baseEnv   termsim.Environment

	exercise    *termsim.Exercise
	stepIndex   int
	totalPoints int
}

// NewExerciseManager wires a manager. All dependencies are required.
func NewExerciseManager(
	source termsim.ExerciseSource,
	store termsim.ProgressStore,
	sh *shell.Shell,
	v StepValidator,
	bus *events.Bus,
	logger termsim.Logger,
	opts ...ManagerOption,
) *ExerciseManager {
	if source == nil {
		panic("exercise source cannot be nil")
	}
	if store == nil {
		panic("progress store cannot be nil")
	}
	if sh == nil {
		panic("shell cannot be nil")
	}
	if v == nil {
		panic("validator cannot be nil")
	}
	if bus == nil {
		panic("event bus cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	m := &ExerciseManager{
		source:    source,
		store:     store,
		shell:     sh,
		fs:        sh.Commands().FileSystem(),
		validator: v,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
		baseEnv:   termsim.DefaultEnvironment(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadExercise fetches the exercise with the given id and makes it current,
// restarting at step one with zero points.
func (m *ExerciseManager) LoadExercise(ctx context.Context, id string) (*termsim.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, err := m.source.Get(ctx, id)
	if err != nil {
		return nil, m.loadFailed(ctx, err)
	}
	if err := m.start(ctx, ex); err != nil {
		return nil, err
	}
	return ex, nil
}

// LoadMatching loads the first exercise the source finds for q.
func (m *ExerciseManager) LoadMatching(ctx context.Context, q termsim.ExerciseQuery) (*termsim.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, err := m.source.Find(ctx, q)
	if err != nil {
		return nil, m.loadFailed(ctx, err)
	}
	if err := m.start(ctx, ex); err != nil {
		return nil, err
	}
	return ex, nil
}

// ResumeExercise loads the exercise and restores the step index and points
// from saved progress, if any. The simulated filesystem is not persisted, so
// it starts from the exercise's initial state.
func (m *ExerciseManager) ResumeExercise(ctx context.Context, id string) (*termsim.Exercise, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved, found, err := m.loadProgress(ctx, id)
	if err != nil {
		m.logger.Error("Failed to read saved progress for %s: %v", id, err)
		found = false
	}

	ex, err := m.source.Get(ctx, id)
	if err != nil {
		return nil, false, m.loadFailed(ctx, err)
	}
	if !found || saved.StepIndex < 0 || saved.StepIndex > len(ex.Steps) || saved.Points < 0 {
		if err := m.start(ctx, ex); err != nil {
			return nil, false, err
		}
		return ex, false, nil
	}

	if err := m.apply(ex); err != nil {
		return nil, false, m.loadFailed(ctx, err)
	}
	m.exercise = ex
	m.stepIndex = saved.StepIndex
	m.totalPoints = saved.Points
	m.logger.Verbose("Resumed %s at step %d with %d points", ex.ID, m.stepIndex+1, m.totalPoints)

	m.publish(ctx, events.TypeExerciseLoaded, events.ExerciseLoaded{
		ExerciseID: ex.ID,
		Title:      ex.Title,
		TotalSteps: len(ex.Steps),
	})
	m.announceStep(ctx)
	return ex, true, nil
}

// ValidateCommand checks command against the current step. A correct answer
// awards the step's points exactly once and advances; a wrong one leaves the
// step current so it can be retried any number of times.
func (m *ExerciseManager) ValidateCommand(ctx context.Context, command string) termsim.ValidationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validate(ctx, command)
}

// Submit runs line through the shell and, unless it opened the editor,
// validates it against the current step. verdict is nil when no validation
// took place.
func (m *ExerciseManager) Submit(ctx context.Context, line string) (commands.Result, *termsim.ValidationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := m.shell.Execute(ctx, line)
	if res.Kind() == commands.ResultEditor || m.exercise == nil {
		return res, nil
	}
	if _, ok := shell.Parse(line); !ok {
		return res, nil
	}
	verdict := m.validate(ctx, line)
	return res, &verdict
}

// CommitEdit stores editor content for a pending nano session.
func (m *ExerciseManager) CommitEdit(req commands.EditorRequest, content string) commands.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shell.CommitEdit(req, content)
}

func (m *ExerciseManager) validate(ctx context.Context, command string) termsim.ValidationResult {
	if m.exercise == nil {
		return termsim.ValidationResult{Feedback: noExerciseFeedback}
	}
	if m.stepIndex >= len(m.exercise.Steps) {
		return termsim.ValidationResult{Feedback: noStepFeedback}
	}

	step := m.exercise.Steps[m.stepIndex]
	result := m.validator.Validate(ctx, command, step, m.fs, m.shell.Env())

	if !result.Correct {
		m.publish(ctx, events.TypeStepFailed, events.StepFailed{
			Feedback: firstNonEmpty(result.Feedback, step.OnWrong, DefaultWrongFeedback),
		})
		return result
	}

	m.totalPoints += step.Points
	m.publish(ctx, events.TypeStepCompleted, events.StepCompleted{
		Step:        m.stepIndex + 1,
		Points:      step.Points,
		TotalPoints: m.totalPoints,
		Feedback:    firstNonEmpty(result.Feedback, step.OnCorrect, DefaultCorrectFeedback),
	})

	m.stepIndex++
	if m.stepIndex >= len(m.exercise.Steps) {
		m.logger.Verbose("Exercise %s completed with %d points", m.exercise.ID, m.totalPoints)
		m.publish(ctx, events.TypeExerciseCompleted, events.ExerciseCompleted{
			ExerciseID:  m.exercise.ID,
			Title:       m.exercise.Title,
			TotalPoints: m.totalPoints,
		})
	} else {
		m.announceStep(ctx)
	}

	m.persist(ctx)
	return result
}

// SaveProgress persists the current position. It is a no-op when no
// exercise is loaded.
func (m *ExerciseManager) SaveProgress(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveProgress(ctx)
}

// LoadProgress returns the saved progress for exerciseID. found is false when
// nothing was saved.
func (m *ExerciseManager) LoadProgress(ctx context.Context, exerciseID string) (*termsim.Progress, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadProgress(ctx, exerciseID)
}

// ResetExercise discards saved progress and reloads the current exercise
// from scratch.
func (m *ExerciseManager) ResetExercise(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exercise == nil {
		return termsim.ErrNoExercise
	}
	id := m.exercise.ID
	if err := m.store.Remove(ctx, termsim.ProgressKey(id)); err != nil {
		m.logger.Error("Failed to remove progress for %s: %v", id, err)
	}

	ex, err := m.source.Get(ctx, id)
	if err != nil {
		return m.loadFailed(ctx, err)
	}
	return m.start(ctx, ex)
}

// Progress reports the current step position.
func (m *ExerciseManager) Progress() ProgressInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exercise == nil {
		return ProgressInfo{}
	}
	info := ProgressInfo{Current: m.stepIndex, Total: len(m.exercise.Steps)}
	if info.Total > 0 {
		info.Percent = int(math.Round(float64(info.Current) / float64(info.Total) * 100))
	}
	return info
}

// CurrentStep returns the step awaiting a correct submission.
func (m *ExerciseManager) CurrentStep() (termsim.Step, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exercise == nil || m.stepIndex >= len(m.exercise.Steps) {
		return termsim.Step{}, false
	}
	return m.exercise.Steps[m.stepIndex], true
}

// StepIndex returns the zero-based index of the current step.
func (m *ExerciseManager) StepIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stepIndex
}

// Hint returns the current step's hint, or "" when there is none.
func (m *ExerciseManager) Hint() string {
	step, ok := m.CurrentStep()
	if !ok {
		return ""
	}
	return step.Hint
}

// TotalPoints returns the points earned so far.
func (m *ExerciseManager) TotalPoints() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalPoints
}

// Exercise returns the loaded exercise, or nil.
func (m *ExerciseManager) Exercise() *termsim.Exercise {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exercise
}

// Completed reports whether every step of the loaded exercise is passed.
func (m *ExerciseManager) Completed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exercise != nil && m.stepIndex >= len(m.exercise.Steps)
}

// Shell returns the shell the manager executes submissions on.
func (m *ExerciseManager) Shell() *shell.Shell {
	return m.shell
}

func (m *ExerciseManager) start(ctx context.Context, ex *termsim.Exercise) error {
	if err := m.apply(ex); err != nil {
		return m.loadFailed(ctx, err)
	}
	m.exercise = ex
	m.stepIndex = 0
	m.totalPoints = 0
	m.logger.Verbose("Loaded exercise %s (%d steps)", ex.ID, len(ex.Steps))

	m.publish(ctx, events.TypeExerciseLoaded, events.ExerciseLoaded{
		ExerciseID: ex.ID,
		Title:      ex.Title,
		TotalSteps: len(ex.Steps),
	})
	m.announceStep(ctx)
	m.persist(ctx)
	return nil
}

// apply rebuilds the filesystem and environment from ex's initial state.
// On error the previous filesystem is restored.
func (m *ExerciseManager) apply(ex *termsim.Exercise) error {
	if err := ex.Validate(); err != nil {
		return err
	}

	prev := m.fs.Snapshot()
	m.fs.Reset()

	env := m.baseEnv.Clone()
	if st := ex.InitialState; st != nil {
		if st.Filesystem != nil {
			if err := m.fs.ReplaceRoot(st.Filesystem); err != nil {
				m.restore(prev)
				return err
			}
		}
		if st.CurrentDirectory != "" {
			if err := m.fs.SetCurrentPath(st.CurrentDirectory); err != nil {
				m.restore(prev)
				return err
			}
		}
		for k, v := range st.Env {
			env[k] = v
		}
	}
	env["PWD"] = m.fs.CurrentPath()
	m.shell.ResetEnvironment(env)
	return nil
}

func (m *ExerciseManager) restore(s termsim.Snapshot) {
	if err := m.fs.ReplaceRoot(s.Root); err != nil {
		m.logger.Error("Failed to restore filesystem: %v", err)
		return
	}
	if err := m.fs.SetCurrentPath(s.CurrentPath); err != nil {
		m.logger.Error("Failed to restore working directory: %v", err)
	}
}

func (m *ExerciseManager) announceStep(ctx context.Context) {
	if m.stepIndex >= len(m.exercise.Steps) {
		return
	}
	m.publish(ctx, events.TypeStepChanged, events.StepChanged{
		Index: m.stepIndex,
		Step:  m.exercise.Steps[m.stepIndex],
	})
}

func (m *ExerciseManager) loadFailed(ctx context.Context, err error) error {
	m.logger.Error("Failed to load exercise: %v", err)
	m.publish(ctx, events.TypeError, events.Error{
		Message: fmt.Sprintf("Failed to load exercise: %v", err),
	})
	return fmt.Errorf("failed to load exercise: %w", err)
}

// persist saves progress, reporting failures as events rather than errors.
func (m *ExerciseManager) persist(ctx context.Context) {
	if err := m.saveProgress(ctx); err != nil {
		m.logger.Error("%v", err)
		m.publish(ctx, events.TypeError, events.Error{Message: err.Error()})
	}
}

func (m *ExerciseManager) saveProgress(ctx context.Context) error {
	if m.exercise == nil {
		return nil
	}
	p := termsim.Progress{
		ExerciseID: m.exercise.ID,
		StepIndex:  m.stepIndex,
		Points:     m.totalPoints,
		Timestamp:  m.now().UnixMilli(),
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode progress: %w", termsim.ErrProgressStore, err)
	}
	if err := m.store.Set(ctx, termsim.ProgressKey(p.ExerciseID), string(data)); err != nil {
		if errors.Is(err, termsim.ErrProgressStore) {
			return err
		}
		return fmt.Errorf("%w: %w", termsim.ErrProgressStore, err)
	}
	return nil
}

func (m *ExerciseManager) loadProgress(ctx context.Context, exerciseID string) (*termsim.Progress, bool, error) {
	raw, ok, err := m.store.Get(ctx, termsim.ProgressKey(exerciseID))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", termsim.ErrProgressStore, err)
	}
	if !ok {
		return nil, false, nil
	}
	var p termsim.Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false, fmt.Errorf("%w: decode progress for %s: %w", termsim.ErrProgressStore, exerciseID, err)
	}
	return &p, true, nil
}

func (m *ExerciseManager) publish(ctx context.Context, t events.Type, payload any) {
	m.bus.Publish(ctx, events.New(t, payload))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
