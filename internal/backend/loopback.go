package backend

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/archway-no/archway/pkg/model"
)

// Loopback is a development stand-in for a real execution backend. It
// resolves every accepted request successfully after a short delay, echoing
// the input sketch back as the generation result. All outcomes still flow
// through the Resolutions channel, so the core never observes it differently
// from a real backend.
type Loopback struct {
	log         *log.Entry
	delay       time.Duration
	resolutions chan Resolution

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewLoopback returns a loopback backend resolving after the given delay.
func NewLoopback(delay time.Duration) *Loopback {
	return &Loopback{
		log:         log.WithField("component", "loopback-backend"),
		delay:       delay,
		resolutions: make(chan Resolution, 64),
	}
}

// SubmitTraining implements Backend.
func (l *Loopback) SubmitTraining(_ context.Context, req TrainingRequest) error {
	l.log.Infof("accepted training job %s (%d images)", req.JobID, req.DatasetSize)
	l.emitLater(Resolution{JobID: req.JobID, Kind: KindTraining, Succeeded: true})
	return nil
}

// SubmitGeneration implements Backend.
func (l *Loopback) SubmitGeneration(_ context.Context, req GenerationRequest) error {
	l.log.Infof("accepted generation job %s for project %s", req.JobID, req.ProjectID)
	result := model.ImageRef{ID: model.NewImageID(), URL: req.Input.URL}
	l.emitLater(Resolution{
		JobID:     req.JobID,
		Kind:      KindGeneration,
		Succeeded: true,
		Result:    &result,
	})
	return nil
}

// Resolutions implements Backend.
func (l *Loopback) Resolutions() <-chan Resolution {
	return l.resolutions
}

func (l *Loopback) emitLater(res Resolution) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		time.Sleep(l.delay)
		l.mu.Lock()
		defer l.mu.Unlock()
		if !l.closed {
			l.resolutions <- res
		}
	}()
}

// Close waits for in-flight resolutions and shuts the channel.
func (l *Loopback) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.wg.Wait()
	close(l.resolutions)
}
