package model

import "time"

// TrainingState is the lifecycle state of a studio's fine-tuning run.
type TrainingState string

const (
	// TrainingIdle means no fine-tuning run has been started yet.
	TrainingIdle TrainingState = "IDLE"
	// TrainingRunning means a fine-tuning run is in flight.
	TrainingRunning TrainingState = "RUNNING"
	// TrainingCompleted means the last fine-tuning run succeeded.
	TrainingCompleted TrainingState = "COMPLETED"
	// TrainingFailed means the last fine-tuning run failed.
	TrainingFailed TrainingState = "FAILED"
)

// TrainingTransitions maps training states to their possible transitions.
// Terminal states are re-enterable through a new submission; only RUNNING
// blocks one.
var TrainingTransitions = map[TrainingState]map[TrainingState]bool{
	TrainingIdle: {
		TrainingRunning: true,
	},
	TrainingRunning: {
		TrainingCompleted: true,
		TrainingFailed:    true,
	},
	TrainingCompleted: {
		TrainingRunning: true,
	},
	TrainingFailed: {
		TrainingRunning: true,
	},
}

// TrainingJob is the canonical record of a studio's fine-tuning run. At most
// one job is RUNNING per studio at any time.
type TrainingJob struct {
	ID        JobID         `json:"id"`
	Studio    string        `json:"studio"`
	State     TrainingState `json:"state"`
	StartedAt time.Time     `json:"started_at"`
	Error     string        `json:"error,omitempty"`
}
