package termsim

import (
	"errors"
	"fmt"
	"strings"
)

// Environment maps simulated shell variable names to values.
type Environment map[string]string

// DefaultEnvironment returns the environment every session starts with.
func DefaultEnvironment() Environment {
	return Environment{
		"USER":  DefaultUser,
		"HOME":  DefaultHome,
		"PATH":  DefaultPath,
		"SHELL": DefaultShell,
	}
}

// Clone returns a copy of e.
func (e Environment) Clone() Environment {
	c := make(Environment, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// Exercise is a named, ordered sequence of gradable steps.
type Exercise struct {
	ID            string        `json:"id" yaml:"id"`
	Title         string        `json:"title" yaml:"title"`
	Category      string        `json:"category,omitempty" yaml:"category,omitempty"`
	Difficulty    string        `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	Steps         []Step        `json:"steps" yaml:"steps"`
	InitialState  *InitialState `json:"initial_state,omitempty" yaml:"initial_state,omitempty"`
	Goals         []Goal        `json:"goals,omitempty" yaml:"goals,omitempty"`
	Documentation any           `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

// TotalPoints returns the sum of the points of every step.
func (e *Exercise) TotalPoints() int {
	total := 0
	for _, s := range e.Steps {
		total += s.Points
	}
	return total
}

// Validate checks the structural requirements of an exercise.
// Unknown validation kinds are accepted here; they fail at validation time.
func (e *Exercise) Validate() error {
	var errs []error

	if strings.TrimSpace(e.ID) == "" {
		errs = append(errs, fmt.Errorf("exercise id is required: %w", ErrInvalidExercise))
	}
	if len(e.Steps) == 0 {
		errs = append(errs, fmt.Errorf("exercise %q has no steps: %w", e.ID, ErrInvalidExercise))
	}
	for i, s := range e.Steps {
		if s.Points < 0 {
			errs = append(errs, fmt.Errorf("step %d of %q has negative points: %w", i+1, e.ID, ErrInvalidExercise))
		}
		if s.Validation.Type == "" {
			errs = append(errs, fmt.Errorf("step %d of %q has no validation type: %w", i+1, e.ID, ErrInvalidExercise))
		}
	}
	if e.InitialState != nil && e.InitialState.Filesystem != nil && !e.InitialState.Filesystem.IsDir() {
		errs = append(errs, fmt.Errorf("initial filesystem of %q must be a directory: %w", e.ID, ErrInvalidExercise))
	}

	return errors.Join(errs...)
}

// InitialState seeds the simulated session when an exercise is loaded.
type InitialState struct {
	Filesystem       *Node       `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`
	CurrentDirectory string      `json:"current_directory,omitempty" yaml:"current_directory,omitempty"`
	Env              Environment `json:"env,omitempty" yaml:"env,omitempty"`
}

// Goal is scoring metadata shown alongside an exercise.
type Goal struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Points int    `json:"points" yaml:"points"`
	Bonus  bool   `json:"bonus,omitempty" yaml:"bonus,omitempty"`
}

// Step is one gradable unit of an exercise.
type Step struct {
	Instruction string         `json:"instruction" yaml:"instruction"`
	Points      int            `json:"points" yaml:"points"`
	Hint        string         `json:"hint,omitempty" yaml:"hint,omitempty"`
	Validation  ValidationSpec `json:"validation" yaml:"validation"`
	OnCorrect   string         `json:"on_correct,omitempty" yaml:"on_correct,omitempty"`
	OnWrong     string         `json:"on_wrong,omitempty" yaml:"on_wrong,omitempty"`
}

// ValidationKind tags the strategy used to check a step.
type ValidationKind string

const (
	ValidationCommandExact     ValidationKind = "command_exact"
	ValidationCommandPattern   ValidationKind = "command_pattern"
	ValidationCommandWithFS    ValidationKind = "command_with_fs_check"
	ValidationStateCheck       ValidationKind = "state_check"
	ValidationFileContentCheck ValidationKind = "file_content_check"
	ValidationAI               ValidationKind = "ai_validation"
	ValidationComplexAI        ValidationKind = "complex_ai"
)

// ValidationKinds lists every known validation kind.
func ValidationKinds() []ValidationKind {
	return []ValidationKind{
		ValidationCommandExact,
		ValidationCommandPattern,
		ValidationCommandWithFS,
		ValidationStateCheck,
		ValidationFileContentCheck,
		ValidationAI,
		ValidationComplexAI,
	}
}

// UsesAI reports whether the kind calls the external AI validation service.
func (k ValidationKind) UsesAI() bool {
	return k == ValidationAI || k == ValidationComplexAI
}

// ValidationSpec describes how a step is checked. Type selects the strategy;
// each strategy reads only the fields it needs.
type ValidationSpec struct {
	Type                ValidationKind `json:"type" yaml:"type"`
	ExpectedCommand     string         `json:"expected_command,omitempty" yaml:"expected_command,omitempty"`
	AlternativeCommands []string       `json:"alternative_commands,omitempty" yaml:"alternative_commands,omitempty"`
	Pattern             string         `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	FSChecks            []FSCheck      `json:"fs_checks,omitempty" yaml:"fs_checks,omitempty"`
	Checks              []StateCheck   `json:"checks,omitempty" yaml:"checks,omitempty"`
	FilePath            string         `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Contains            string         `json:"contains,omitempty" yaml:"contains,omitempty"`
	AIPrompt            string         `json:"ai_prompt,omitempty" yaml:"ai_prompt,omitempty"`
	ExpectedBehavior    string         `json:"expected_behavior,omitempty" yaml:"expected_behavior,omitempty"`
	Context             map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}

// FSCheckKind is the assertion made by a filesystem check.
type FSCheckKind string

const (
	FSCheckFileExists      FSCheckKind = "file_exists"
	FSCheckDirectoryExists FSCheckKind = "directory_exists"
	FSCheckFileNotExists   FSCheckKind = "file_not_exists"
)

// FSCheck asserts something about a path in the simulated filesystem.
type FSCheck struct {
	Type FSCheckKind `json:"type" yaml:"type"`
	Path string      `json:"path" yaml:"path"`
}

// StateCheckKind is the assertion made by a state check.
type StateCheckKind string

const (
	StateCheckCurrentDirectory StateCheckKind = "current_directory"
	StateCheckEnvVar           StateCheckKind = "env_var"
)

// StateCheck asserts the working directory or an environment variable value.
type StateCheck struct {
	Type  StateCheckKind `json:"type" yaml:"type"`
	Name  string         `json:"name,omitempty" yaml:"name,omitempty"`
	Value string         `json:"value" yaml:"value"`
}

// ValidationResult is the verdict of checking a command against a step.
// An empty Feedback means the strategy had nothing to add.
type ValidationResult struct {
	Correct  bool     `json:"correct"`
	Feedback string   `json:"feedback,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// Progress is the persisted run state of one exercise.
type Progress struct {
	ExerciseID string `json:"exerciseId"`
	StepIndex  int    `json:"stepIndex"`
	Points     int    `json:"points"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// ExerciseSummary is the catalog entry for an exercise.
type ExerciseSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Filename   string `json:"filename,omitempty"`
}
