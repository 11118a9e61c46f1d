// Package backend defines the boundary to the image-model execution backend.
// The core hands a job request across it and later receives exactly one
// resolution keyed by job ID. Resolutions arrive in completion order, which
// is not necessarily submission order.
package backend

import (
	"context"

	"github.com/archway-no/archway/pkg/model"
)

// Kind discriminates which orchestrator owns a resolution.
type Kind string

const (
	// KindTraining marks fine-tuning resolutions.
	KindTraining Kind = "TRAINING"
	// KindGeneration marks render resolutions.
	KindGeneration Kind = "GENERATION"
)

// TrainingRequest asks the backend to fine-tune the studio model.
type TrainingRequest struct {
	JobID       model.JobID
	Studio      string
	DatasetSize int
}

// GenerationRequest asks the backend to render one output from an input
// sketch and a style reference.
type GenerationRequest struct {
	JobID     model.JobID
	Studio    string
	Input     model.ImageRef
	StyleRef  model.ImageRef
	ProjectID model.ProjectID
	Category  string
}

// Resolution is the single outcome event for an accepted request. Result is
// set only for successful generations.
type Resolution struct {
	JobID     model.JobID
	Kind      Kind
	Succeeded bool
	Result    *model.ImageRef
	Error     string
}

// Backend is the opaque execution collaborator. There is no cancellation:
// once a request is accepted its resolution will eventually be delivered and
// must be applied to canonical state even if the submitting view is gone.
type Backend interface {
	SubmitTraining(ctx context.Context, req TrainingRequest) error
	SubmitGeneration(ctx context.Context, req GenerationRequest) error
	// Resolutions delivers exactly one event per accepted request, in
	// completion order. The channel closes when the backend shuts down.
	Resolutions() <-chan Resolution
	Close()
}
