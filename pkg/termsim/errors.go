package termsim

import (
	"errors"
	"strings"
)

// Sentinel errors for infrastructure failures.
// Command-level failures (missing files, bad paths) never surface as these;
// they are rendered into terminal output by the command set.
//
// Example usage:
//
//	err := manager.LoadExercise(ctx, "linux-basics")
//	if errors.Is(err, termsim.ErrExerciseNotFound) {
//	    // offer the catalog listing instead
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrExerciseNotFound indicates the exercise source has no exercise with the requested id or topic.
	ErrExerciseNotFound = errors.New("exercise not found")

	// ErrInvalidExercise indicates an exercise document failed to decode or validate.
	ErrInvalidExercise = errors.New("invalid exercise")

	// ErrNoExercise indicates an operation needs a loaded exercise and none is loaded.
	ErrNoExercise = errors.New("no exercise loaded")

	// ErrProgressStore indicates the durable progress store failed.
	ErrProgressStore = errors.New("progress store failure")

	// ErrAIUnavailable indicates the AI validation service could not be reached
	// or refused the request (circuit open, non-2xx response, timeout).
	ErrAIUnavailable = errors.New("ai validation unavailable")

	// ErrUnsupportedAuthMethod indicates the requested database authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates the progress database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrExerciseIncomplete indicates a scripted run ended before the last step was completed.
	ErrExerciseIncomplete = errors.New("exercise not completed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrExerciseNotFound), errors.Is(err, ErrInvalidExercise):
		return ExitExerciseError
	case errors.Is(err, ErrConnectionFailed), errors.Is(err, ErrProgressStore):
		return ExitConnectionError
	case errors.Is(err, ErrAIUnavailable):
		return ExitAIUnavailable
	case errors.Is(err, ErrExerciseIncomplete):
		return ExitExerciseIncomplete
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes the messages cobra produces for bad invocations.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"missing required argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
