package model

import "time"

// GenerationState is the lifecycle state of one render request.
type GenerationState string

const (
	// GenerationIdle means the request has not been accepted.
	GenerationIdle GenerationState = "IDLE"
	// GenerationRunning means the render is in flight.
	GenerationRunning GenerationState = "RUNNING"
	// GenerationSucceeded means the render produced a result image.
	GenerationSucceeded GenerationState = "SUCCEEDED"
	// GenerationFailed means the render failed; resubmission is permitted.
	GenerationFailed GenerationState = "FAILED"
)

// GenerationTransitions maps generation states to their possible transitions.
var GenerationTransitions = map[GenerationState]map[GenerationState]bool{
	GenerationIdle: {
		GenerationRunning: true,
	},
	GenerationRunning: {
		GenerationSucceeded: true,
		GenerationFailed:    true,
	},
	GenerationSucceeded: {},
	GenerationFailed:    {},
}

// GenerationJob is the canonical record of one render request. Jobs are
// independent per submission; unrelated requests never serialize on each
// other.
type GenerationJob struct {
	ID          JobID           `json:"id"`
	State       GenerationState `json:"state"`
	Input       *ImageRef       `json:"input"`
	StyleRef    *ImageRef       `json:"style_ref"`
	ProjectID   ProjectID       `json:"project_id"`
	Category    string          `json:"category,omitempty"`
	Result      *ImageRef       `json:"result,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Error       string          `json:"error,omitempty"`
}
