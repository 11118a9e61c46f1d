// Package generation manages render requests: each submission pairs an input
// sketch with a style reference and a destination project, runs
// asynchronously, and on success hands its result to the project registry.
package generation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/archway-no/archway/internal/backend"
	"github.com/archway-no/archway/internal/notify"
	"github.com/archway-no/archway/pkg/model"
)

// ErrMissingInput rejects a submission without both image handles resolved.
var ErrMissingInput = errors.New("input and style reference are required")

// ErrUnknownProject rejects a submission against a project that does not
// exist.
var ErrUnknownProject = errors.New("target project does not exist")

// ErrDuplicatePending rejects re-submitting a request identical to one still
// running.
var ErrDuplicatePending = errors.New("an identical request is still running")

// ErrJobNotFound marks lookups of unknown job ids.
var ErrJobNotFound = errors.New("generation job not found")

// ProjectSink is the slice of the project registry this orchestrator talks
// to. Attachment is an ownership transfer: once AttachResult is called the
// orchestrator never mutates the render again.
type ProjectSink interface {
	Exists(id model.ProjectID) bool
	AttachResult(id model.ProjectID, result model.ImageRef)
}

// Generator is the slice of the execution backend this orchestrator uses.
type Generator interface {
	SubmitGeneration(ctx context.Context, req backend.GenerationRequest) error
}

// requestKey identifies a submission so an identical request cannot run
// twice concurrently, while distinct requests stay independent.
type requestKey struct {
	input     model.ImageID
	styleRef  model.ImageID
	projectID model.ProjectID
}

// Orchestrator tracks every render request of the session by job id. Jobs
// are independent per submission: state lives in a per-job map, never in a
// single shared slot, so unrelated requests cannot serialize on each other.
type Orchestrator struct {
	mu        sync.Mutex
	log       *log.Entry
	studio    string
	projects  ProjectSink
	generator Generator
	notifier  notify.Notifier

	jobs    map[model.JobID]*model.GenerationJob
	pending map[requestKey]model.JobID
	order   []model.JobID
}

// New returns an orchestrator with no jobs.
func New(
	studio string, projects ProjectSink, generator Generator, notifier notify.Notifier,
) *Orchestrator {
	return &Orchestrator{
		log:       log.WithField("component", "generation"),
		studio:    studio,
		projects:  projects,
		generator: generator,
		notifier:  notifier,
		jobs:      make(map[model.JobID]*model.GenerationJob),
		pending:   make(map[requestKey]model.JobID),
	}
}

// Submit accepts a render request when the input and style reference are
// both resolved and the target project exists. Category is metadata with no
// gating effect. Rejections are boundary gates: nothing is created and no
// state changes.
func (o *Orchestrator) Submit(
	ctx context.Context,
	input, styleRef *model.ImageRef,
	projectID model.ProjectID,
	category string,
) (model.JobID, error) {
	if input == nil || styleRef == nil {
		return "", ErrMissingInput
	}
	if !o.projects.Exists(projectID) {
		return "", errors.Wrapf(ErrUnknownProject, "project %s", projectID)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	key := requestKey{input: input.ID, styleRef: styleRef.ID, projectID: projectID}
	if runningID, ok := o.pending[key]; ok {
		return "", errors.Wrapf(ErrDuplicatePending, "job %s", runningID)
	}

	job := &model.GenerationJob{
		ID:          model.NewJobID(),
		State:       model.GenerationRunning,
		Input:       input,
		StyleRef:    styleRef,
		ProjectID:   projectID,
		Category:    category,
		SubmittedAt: time.Now().UTC(),
	}
	req := backend.GenerationRequest{
		JobID:     job.ID,
		Studio:    o.studio,
		Input:     *input,
		StyleRef:  *styleRef,
		ProjectID: projectID,
		Category:  category,
	}
	if err := o.generator.SubmitGeneration(ctx, req); err != nil {
		return "", errors.Wrap(err, "backend rejected generation job")
	}

	o.jobs[job.ID] = job
	o.pending[key] = job.ID
	o.order = append(o.order, job.ID)
	o.log.Infof("generation job %s started for project %s", job.ID, projectID)
	return job.ID, nil
}

// Resolve applies the backend's outcome for the given job. Resolutions
// arrive in completion order, which may differ from submission order, and a
// resolution for a view the user has abandoned still applies: job state is
// the source of truth, not the rendered page. On success the result is
// transferred to the project registry, which absorbs the orphan case of a
// deleted target project.
func (o *Orchestrator) Resolve(jobID model.JobID, result *model.ImageRef, errMsg string) {
	o.mu.Lock()
	job, ok := o.jobs[jobID]
	if !ok || job.State != model.GenerationRunning {
		o.mu.Unlock()
		o.log.Warnf("dropping stale generation resolution for job %s", jobID)
		return
	}
	delete(o.pending, requestKey{
		input:     job.Input.ID,
		styleRef:  job.StyleRef.ID,
		projectID: job.ProjectID,
	})

	if result == nil {
		job.State = model.GenerationFailed
		job.Result = nil
		job.Error = errMsg
		o.mu.Unlock()
		o.notifier.Error("Rendering feilet", errMsg)
		o.log.Errorf("generation job %s failed: %s", jobID, errMsg)
		return
	}

	job.State = model.GenerationSucceeded
	job.Result = result
	projectID := job.ProjectID
	o.mu.Unlock()

	// Ownership transfer; the registry is the sole mutator of render lists
	// and drops the attachment silently if the project is gone.
	o.projects.AttachResult(projectID, *result)
	o.notifier.Success("Render fullført", string(projectID))
	o.log.Infof("generation job %s succeeded", jobID)
}

// State returns the state of one job. Unknown ids report Idle: no request
// was ever accepted under that id.
func (o *Orchestrator) State(jobID model.JobID) model.GenerationState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.jobs[jobID]; ok {
		return job.State
	}
	return model.GenerationIdle
}

// Job returns a snapshot of one job record.
func (o *Orchestrator) Job(jobID model.JobID) (*model.GenerationJob, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.jobs[jobID]
	if !ok {
		return nil, errors.Wrapf(ErrJobNotFound, "job %s", jobID)
	}
	c := *job
	return &c, nil
}

// Jobs returns all job records in submission order.
func (o *Orchestrator) Jobs() []model.GenerationJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.GenerationJob, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, *o.jobs[id])
	}
	return out
}
