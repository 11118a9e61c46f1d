package backend

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/archway-no/archway/pkg/model"
)

// Manual is a Backend whose resolutions are driven by the caller. Tests use
// it to resolve jobs in arbitrary order.
type Manual struct {
	mu          sync.Mutex
	resolutions chan Resolution
	training    map[model.JobID]TrainingRequest
	generation  map[model.JobID]GenerationRequest
	closed      bool
}

// NewManual returns a caller-driven backend.
func NewManual() *Manual {
	return &Manual{
		resolutions: make(chan Resolution, 64),
		training:    make(map[model.JobID]TrainingRequest),
		generation:  make(map[model.JobID]GenerationRequest),
	}
}

// SubmitTraining records the request for later resolution.
func (m *Manual) SubmitTraining(_ context.Context, req TrainingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.training[req.JobID] = req
	return nil
}

// SubmitGeneration records the request for later resolution.
func (m *Manual) SubmitGeneration(_ context.Context, req GenerationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation[req.JobID] = req
	return nil
}

// Resolutions implements Backend.
func (m *Manual) Resolutions() <-chan Resolution {
	return m.resolutions
}

// ResolveTraining emits the outcome for a pending training request.
func (m *Manual) ResolveTraining(jobID model.JobID, succeeded bool, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.training[jobID]; !ok {
		return errors.Errorf("no pending training job %s", jobID)
	}
	delete(m.training, jobID)
	m.resolutions <- Resolution{
		JobID:     jobID,
		Kind:      KindTraining,
		Succeeded: succeeded,
		Error:     errMsg,
	}
	return nil
}

// ResolveGeneration emits the outcome for a pending generation request.
func (m *Manual) ResolveGeneration(
	jobID model.JobID, result *model.ImageRef, errMsg string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.generation[jobID]; !ok {
		return errors.Errorf("no pending generation job %s", jobID)
	}
	delete(m.generation, jobID)
	m.resolutions <- Resolution{
		JobID:     jobID,
		Kind:      KindGeneration,
		Succeeded: result != nil,
		Result:    result,
		Error:     errMsg,
	}
	return nil
}

// PendingGeneration returns the recorded request for a job, if any.
func (m *Manual) PendingGeneration(jobID model.JobID) (GenerationRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.generation[jobID]
	return req, ok
}

// Close shuts the resolution channel.
func (m *Manual) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.resolutions)
	}
}
