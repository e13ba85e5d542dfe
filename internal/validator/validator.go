// Package validator decides whether a submitted command satisfies an exercise step.
//
// Local strategies (command match, pattern, filesystem, state and file
// content checks) never leave the process. Only ai_validation and complex_ai
// call the AI collaborator, always under a timeout.
package validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

// FileSystem is the read-only view of the simulated filesystem the
// strategies inspect.
type FileSystem interface {
	Exists(path string) bool
	IsDirectory(path string) bool
	ReadFile(path string) (string, error)
	CurrentPath() string
	Snapshot() termsim.Snapshot
}

// Observer is notified after every validation.
type Observer interface {
	ValidationCompleted(kind termsim.ValidationKind, correct bool, elapsed time.Duration)
}

// Validator checks commands against steps.
// Safe for concurrent use if the AI collaborator is.
type Validator struct {
	ai       termsim.AIValidator
	timeout  time.Duration
	logger   termsim.Logger
	observer Observer
}

// Option configures a Validator.
type Option func(*Validator)

// WithTimeout bounds each AI call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		v.timeout = d
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l termsim.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// WithObserver registers an observer for completed validations.
func WithObserver(o Observer) Option {
	return func(v *Validator) {
		v.observer = o
	}
}

// New creates a Validator. ai may be nil, in which case AI-backed steps fail
// with feedback saying no service is configured.
func New(ai termsim.AIValidator, opts ...Option) *Validator {
	v := &Validator{
		ai:      ai,
		timeout: termsim.DefaultAITimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks command against step using the strategy named by the
// step's validation type.
func (v *Validator) Validate(ctx context.Context, command string, step termsim.Step, fs FileSystem, env termsim.Environment) termsim.ValidationResult {
	start := time.Now()
	spec := step.Validation

	var res termsim.ValidationResult
	switch spec.Type {
	case termsim.ValidationCommandExact:
		res = commandExact(command, spec)
	case termsim.ValidationCommandPattern:
		res = commandPattern(command, spec)
	case termsim.ValidationCommandWithFS:
		res = commandWithFSCheck(command, spec, fs)
	case termsim.ValidationStateCheck:
		res = stateCheck(spec, fs, env)
	case termsim.ValidationFileContentCheck:
		res = fileContentCheck(spec, fs)
	case termsim.ValidationAI:
		res = v.aiValidation(ctx, command, spec, fs)
	case termsim.ValidationComplexAI:
		res = v.complexAI(ctx, command, spec, fs, env)
	default:
		res = fail(fmt.Sprintf("Unknown validation type: %s", spec.Type))
	}

	if v.logger != nil {
		v.logger.Verbose("validate %s %q: correct=%t", spec.Type, command, res.Correct)
	}
	if v.observer != nil {
		v.observer.ValidationCompleted(spec.Type, res.Correct, time.Since(start))
	}
	return res
}

func pass() termsim.ValidationResult {
	return termsim.ValidationResult{Correct: true}
}

func fail(feedback string) termsim.ValidationResult {
	return termsim.ValidationResult{Correct: false, Feedback: feedback}
}

// firstToken returns the first whitespace-separated token of s, or "".
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// commandExact compares only the first token of the command with the first
// token of the expected command and each alternative.
func commandExact(command string, spec termsim.ValidationSpec) termsim.ValidationResult {
	got := firstToken(command)
	candidates := append([]string{spec.ExpectedCommand}, spec.AlternativeCommands...)
	for _, c := range candidates {
		if got == firstToken(c) {
			return pass()
		}
	}
	return fail("Expected: " + spec.ExpectedCommand)
}

func commandPattern(command string, spec termsim.ValidationSpec) termsim.ValidationResult {
	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return fail(fmt.Sprintf("Invalid validation pattern %q: %v", spec.Pattern, err))
	}
	if re.MatchString(command) {
		return pass()
	}
	return fail("Command should match pattern: " + spec.Pattern)
}

func commandWithFSCheck(command string, spec termsim.ValidationSpec, fs FileSystem) termsim.ValidationResult {
	if res := commandExact(command, spec); !res.Correct {
		return res
	}
	for _, check := range spec.FSChecks {
		switch check.Type {
		case termsim.FSCheckFileExists:
			if !fs.Exists(check.Path) {
				return fail(fmt.Sprintf("File %s should exist", check.Path))
			}
		case termsim.FSCheckDirectoryExists:
			if !fs.IsDirectory(check.Path) {
				return fail(fmt.Sprintf("Directory %s should exist", check.Path))
			}
		case termsim.FSCheckFileNotExists:
			if fs.Exists(check.Path) {
				return fail(fmt.Sprintf("File %s should not exist", check.Path))
			}
		}
	}
	return pass()
}

func stateCheck(spec termsim.ValidationSpec, fs FileSystem, env termsim.Environment) termsim.ValidationResult {
	for _, check := range spec.Checks {
		switch check.Type {
		case termsim.StateCheckCurrentDirectory:
			if fs.CurrentPath() != check.Value {
				return fail(fmt.Sprintf("Current directory should be %s", check.Value))
			}
		case termsim.StateCheckEnvVar:
			if value, ok := env[check.Name]; !ok || value != check.Value {
				return fail(fmt.Sprintf("Environment variable %s should be %s", check.Name, check.Value))
			}
		}
	}
	return pass()
}

func fileContentCheck(spec termsim.ValidationSpec, fs FileSystem) termsim.ValidationResult {
	content, err := fs.ReadFile(spec.FilePath)
	if err != nil {
		return fail(err.Error())
	}

	switch {
	case spec.Pattern != "":
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return fail(fmt.Sprintf("Invalid validation pattern %q: %v", spec.Pattern, err))
		}
		if !re.MatchString(content) {
			return fail("File content should match pattern: " + spec.Pattern)
		}
	case spec.Contains != "":
		if !strings.Contains(content, spec.Contains) {
			return fail("File should contain: " + spec.Contains)
		}
	}
	return pass()
}

func (v *Validator) aiValidation(ctx context.Context, command string, spec termsim.ValidationSpec, fs FileSystem) termsim.ValidationResult {
	content := command
	if spec.FilePath != "" {
		c, err := fs.ReadFile(spec.FilePath)
		if err != nil {
			return fail(fmt.Sprintf("File %s not found. Please create the file first.", spec.FilePath))
		}
		content = c
	}

	prompt := spec.AIPrompt
	if prompt == "" {
		prompt = termsim.DefaultAIPrompt
	}

	aiCtx := map[string]any{
		"type":     "dockerfile",
		"exercise": "Docker Fundamentals",
	}
	if spec.FilePath != "" {
		aiCtx["file_path"] = spec.FilePath
	}
	for k, val := range spec.Context {
		aiCtx[k] = val
	}

	res, answered := v.callAI(ctx, termsim.AIRequest{Command: content, Expected: prompt, Context: aiCtx})
	if answered && res.Score == nil {
		zero := 0.0
		res.Score = &zero
	}
	return res
}

func (v *Validator) complexAI(ctx context.Context, command string, spec termsim.ValidationSpec, fs FileSystem, env termsim.Environment) termsim.ValidationResult {
	aiCtx := map[string]any{
		"command":    command,
		"filesystem": fs.Snapshot(),
		"env":        env.Clone(),
	}
	for k, val := range spec.Context {
		aiCtx[k] = val
	}
	res, _ := v.callAI(ctx, termsim.AIRequest{Command: command, Expected: spec.ExpectedBehavior, Context: aiCtx})
	return res
}

var errAITimeout = errors.New("ai validation timeout")

// callAI sends req under the configured timeout. answered is false when no
// verdict came back from the service.
func (v *Validator) callAI(ctx context.Context, req termsim.AIRequest) (res termsim.ValidationResult, answered bool) {
	if v.ai == nil {
		return fail("AI validation failed: no AI validation service configured"), false
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, v.timeout, errAITimeout)
		defer cancel()
	}

	resp, err := v.ai.Validate(ctx, req)
	if err != nil {
		if v.logger != nil {
			v.logger.Error("ai validation: %v", err)
		}
		if errors.Is(context.Cause(ctx), errAITimeout) {
			return fail(fmt.Sprintf("AI validation failed: timed out after %s", v.timeout)), false
		}
		return fail("AI validation failed: " + err.Error()), false
	}
	if resp == nil {
		return fail("AI validation failed: empty response"), false
	}
	return termsim.ValidationResult{
		Correct:  resp.Correct,
		Feedback: resp.Feedback,
		Score:    resp.Score,
	}, true
}
