package termsim

import "context"

// ExerciseQuery selects an exercise by topic rather than by id.
type ExerciseQuery struct {
	Topic string
	// Level is 1 (beginner), 2 (intermediate) or 3 (advanced); 0 means any.
	Level int
	Seed  string
	User  string
}

// ExerciseSource fetches exercise definitions.
type ExerciseSource interface {
	// Get returns the exercise with the given id or an error wrapping ErrExerciseNotFound.
	Get(ctx context.Context, id string) (*Exercise, error)

	// Find returns the first exercise matching the query.
	Find(ctx context.Context, q ExerciseQuery) (*Exercise, error)

	// List returns a summary of every available exercise.
	List(ctx context.Context) ([]ExerciseSummary, error)
}

// AIRequest is the payload sent to the AI validation service.
type AIRequest struct {
	Command  string         `json:"command"`
	Expected string         `json:"expected"`
	Context  map[string]any `json:"context"`
}

// AIResponse is the verdict returned by the AI validation service.
type AIResponse struct {
	Correct  bool     `json:"correct"`
	Feedback string   `json:"feedback"`
	Score    *float64 `json:"score,omitempty"`
}

// AIValidator is the opaque AI validation collaborator.
// Implementations must honor ctx cancellation and deadlines.
type AIValidator interface {
	Validate(ctx context.Context, req AIRequest) (*AIResponse, error)
}

// ProgressStore is a durable string key-value store.
// Writes are last-write-wins; no ordering guarantee is required.
type ProgressStore interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
