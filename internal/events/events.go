// Package events carries exercise progress notifications from the manager to
// whatever renders them.
package events

import (
	"time"

	"github.com/darwinyusef/termsim/pkg/termsim"
	"github.com/google/uuid"
)

// Type identifies an event.
type Type string

const (
	TypeExerciseLoaded    Type = "exercise_loaded"
	TypeStepChanged       Type = "step_changed"
	TypeStepCompleted     Type = "step_completed"
	TypeStepFailed        Type = "step_failed"
	TypeExerciseCompleted Type = "exercise_completed"
	TypeError             Type = "error"
)

// Event is one notification. Payload holds the type-specific struct below.
type Event struct {
	ID      string    `json:"id"`
	Type    Type      `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

// New stamps payload with a fresh id and the current time.
func New(t Type, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    t,
		Time:    time.Now(),
		Payload: payload,
	}
}

// ExerciseLoaded is emitted once an exercise is fetched and applied.
type ExerciseLoaded struct {
	ExerciseID string `json:"exerciseId"`
	Title      string `json:"title"`
	TotalSteps int    `json:"totalSteps"`
}

// StepChanged is emitted whenever a new step becomes current.
type StepChanged struct {
	Index int          `json:"index"`
	Step  termsim.Step `json:"step"`
}

// StepCompleted is emitted when a step is passed. Step is 1-based.
type StepCompleted struct {
	Step        int    `json:"step"`
	Points      int    `json:"points"`
	TotalPoints int    `json:"totalPoints"`
	Feedback    string `json:"feedback"`
}

// StepFailed is emitted when a submission does not satisfy the current step.
type StepFailed struct {
	Feedback string `json:"feedback"`
}

// ExerciseCompleted is emitted after the last step is passed.
type ExerciseCompleted struct {
	ExerciseID  string `json:"exerciseId"`
	Title       string `json:"title"`
	TotalPoints int    `json:"totalPoints"`
}

// Error reports an infrastructure failure.
type Error struct {
	Message string `json:"message"`
}
