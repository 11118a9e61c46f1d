// Package training manages the lifecycle of a studio's fine-tuning run: at
// most one run is in flight per studio at any time.
package training

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

// ErrGateClosed rejects a submission while the dataset gate is closed.
var ErrGateClosed = errors.New("not enough training images")

// ErrAlreadyRunning rejects a submission while a run is in flight.
var ErrAlreadyRunning = errors.New("a training job is already running")

// ErrPermissionDenied rejects a submission by a caller whose role may not
// trigger training.
var ErrPermissionDenied = errors.New("caller may not trigger training")

// Gate decides whether enough training imagery exists.
type Gate interface {
	CanTrain() bool
	Size() int
}

// RoleSource supplies the caller's role; the membership registry implements
// it. The orchestrator only reads roles.
type RoleSource interface {
	RoleOf(id model.MemberID) (model.Role, bool)
}

// Trainer is the slice of the execution backend this orchestrator uses.
type Trainer interface {
	SubmitTraining(ctx context.Context, req backend.TrainingRequest) error
}

// Orchestrator runs the training state machine for one studio.
type Orchestrator struct {
	mu       sync.Mutex
	log      *log.Entry
	studio   string
	gate     Gate
	roles    RoleSource
	trainer  Trainer
	notifier notify.Notifier

	job model.TrainingJob
}

// New returns an idle orchestrator for the studio.
func New(
	studio string, gate Gate, roles RoleSource, trainer Trainer, notifier notify.Notifier,
) *Orchestrator {
	return &Orchestrator{
		log:      log.WithField("component", "training"),
		studio:   studio,
		gate:     gate,
		roles:    roles,
		trainer:  trainer,
		notifier: notifier,
		job:      model.TrainingJob{Studio: studio, State: model.TrainingIdle},
	}
}

// Submit starts a fine-tuning run. Preconditions: the dataset gate is open,
// no run is in flight, and the caller's role may trigger training. A
// rejected submission leaves state untouched; terminal states are
// re-enterable, only RUNNING blocks.
func (o *Orchestrator) Submit(ctx context.Context, caller model.MemberID) (model.JobID, error) {
	role, ok := o.roles.RoleOf(caller)
	if !ok || !role.CanTrain() {
		return "", errors.Wrapf(ErrPermissionDenied, "member %s", caller)
	}
	if !o.gate.CanTrain() {
		return "", ErrGateClosed
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job.State == model.TrainingRunning {
		return "", ErrAlreadyRunning
	}

	prev := o.job
	o.job = model.TrainingJob{
		ID:        model.NewJobID(),
		Studio:    o.studio,
		State:     model.TrainingRunning,
		StartedAt: time.Now().UTC(),
	}
	req := backend.TrainingRequest{
		JobID:       o.job.ID,
		Studio:      o.studio,
		DatasetSize: o.gate.Size(),
	}
	if err := o.trainer.SubmitTraining(ctx, req); err != nil {
		o.job = prev
		return "", errors.Wrap(err, "backend rejected training job")
	}

	o.log.Infof("training job %s started (%d images)", o.job.ID, req.DatasetSize)
	return o.job.ID, nil
}

// Resolve applies the backend's outcome for the given job. Resolutions for
// unknown or stale job ids are logged and dropped; the canonical record
// takes exactly one resolution per run. A failed run stays visible in the
// FAILED state until a new submission replaces it.
func (o *Orchestrator) Resolve(jobID model.JobID, succeeded bool, errMsg string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.job.ID != jobID || o.job.State != model.TrainingRunning {
		o.log.Warnf("dropping stale training resolution for job %s", jobID)
		return
	}

	if succeeded {
		o.job.State = model.TrainingCompleted
		o.notifier.Success("Modellen er trent", o.studio)
		o.log.Infof("training job %s completed", jobID)
		return
	}
	o.job.State = model.TrainingFailed
	o.job.Error = errMsg
	o.notifier.Error("Trening feilet", errMsg)
	o.log.Errorf("training job %s failed: %s", jobID, errMsg)
}

// State returns the current training state.
func (o *Orchestrator) State() model.TrainingState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job.State
}

// Job returns a snapshot of the canonical training record.
func (o *Orchestrator) Job() model.TrainingJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job
}
