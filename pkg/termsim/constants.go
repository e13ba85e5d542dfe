package termsim

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess            = 0  // Exercise run completed successfully
	ExitGeneralError       = 1  // Unknown or unclassified error
	ExitUsageError         = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic              = 3  // Internal panic (unexpected crash)
	ExitConfigError        = 10 // Invalid configuration
	ExitConnectionError    = 11 // Progress store or database unreachable
	ExitExerciseError      = 12 // Exercise missing or malformed
	ExitAIUnavailable      = 13 // AI validation service unavailable
	ExitExerciseIncomplete = 14 // Scripted run ended before the last step
)

// Simulated environment defaults.
const (
	DefaultUser  = "student"
	DefaultGroup = "student"
	DefaultHome  = "/home/student"
	DefaultPath  = "/usr/local/bin:/usr/bin:/bin"
	DefaultShell = "/bin/bash"

	// ClearScreen is the output sentinel that instructs the host to wipe its display.
	ClearScreen = "\x1b[2J\x1b[H"

	// ProgressKeyPrefix prefixes exercise ids in the durable progress store.
	ProgressKeyPrefix = "exercise_"

	// DefaultAIPrompt is used by ai_validation steps that carry no prompt.
	DefaultAIPrompt = "Validate this content"
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultAITimeout bounds a single AI validation call, retries included.
	DefaultAITimeout = 30 * time.Second

	// DefaultBreakerFailures is the consecutive failure count that opens the AI circuit.
	DefaultBreakerFailures = 5

	// DefaultBreakerTimeout is how long the AI circuit stays open before probing.
	DefaultBreakerTimeout = 30 * time.Second

	// DefaultServerAddr is the listen address for `termsim serve`.
	DefaultServerAddr = ":3000"

	// DefaultForceApprovalCountdown is the grace period before a forced progress reset.
	DefaultForceApprovalCountdown = 3 * time.Second
)

// ProgressKey returns the store key under which progress for exerciseID is saved.
func ProgressKey(exerciseID string) string {
	return ProgressKeyPrefix + exerciseID
}
