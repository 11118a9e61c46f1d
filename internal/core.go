// Package internal wires the Archway core: the session context owning the
// registries and orchestrators, the dispatcher applying backend resolutions,
// and the HTTP surface the studio frontend talks to.
package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/archway-no/archway/internal/backend"
	"github.com/archway-no/archway/internal/config"
	"github.com/archway-no/archway/internal/dataset"
	"github.com/archway-no/archway/internal/generation"
	"github.com/archway-no/archway/internal/member"
	"github.com/archway-no/archway/internal/notify"
	"github.com/archway-no/archway/internal/project"
	"github.com/archway-no/archway/internal/training"
)

// Core is the session context of one studio. It is constructed at session
// start and discarded at session end; nothing in it is an ambient singleton.
type Core struct {
	version string
	config  *config.Config
	log     *log.Entry

	backend  backend.Backend
	notifier notify.Notifier

	dataset    *dataset.Dataset
	members    *member.Registry
	projects   *project.Registry
	training   *training.Orchestrator
	generation *generation.Orchestrator

	echo *echo.Echo
}

// New constructs the session context: one instance of every registry and
// orchestrator, the bootstrap admin, and the configured seed projects.
func New(version string, cfg *config.Config, b backend.Backend) *Core {
	c := &Core{
		version:  version,
		config:   cfg,
		log:      log.WithField("component", "core"),
		backend:  b,
		notifier: notify.NewLog(),
		dataset:  dataset.New(),
		members:  member.New(cfg.Admin.Name, cfg.Admin.Email),
		projects: project.New(),
	}
	c.training = training.New(cfg.Studio, c.dataset, c.members, b, c.notifier)
	c.generation = generation.New(cfg.Studio, c.projects, b, c.notifier)

	// Seed projects are listed most-recent-first, so create them in reverse
	// to preserve the configured order.
	for i := len(cfg.SeedProjects) - 1; i >= 0; i-- {
		if _, err := c.projects.Create(cfg.SeedProjects[i]); err != nil {
			c.log.WithError(err).Warnf("skipping seed project %q", cfg.SeedProjects[i])
		}
	}

	c.echo = echo.New()
	c.echo.HideBanner = true
	c.echo.HidePort = true
	c.registerRoutes()
	return c
}

// Run serves the core until the context is canceled. The dispatcher applies
// backend resolutions for as long as the backend stays open.
func (c *Core) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.dispatch()
	}()

	errs := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", c.config.Port)
		c.log.Infof("archway core %s listening on %s", c.version, addr)
		errs <- c.echo.Start(addr)
	}()

	select {
	case <-ctx.Done():
		c.backend.Close()
		<-done
		if err := c.echo.Shutdown(context.Background()); err != nil {
			return errors.Wrap(err, "error shutting down api server")
		}
		return nil
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "api server failed")
	}
}

// dispatch routes each backend resolution to the orchestrator owning the
// job. Delivery order is completion order; the orchestrators tolerate any
// interleaving and drop stale events themselves.
func (c *Core) dispatch() {
	for res := range c.backend.Resolutions() {
		switch res.Kind {
		case backend.KindTraining:
			c.training.Resolve(res.JobID, res.Succeeded, res.Error)
		case backend.KindGeneration:
			c.generation.Resolve(res.JobID, res.Result, res.Error)
		default:
			c.log.Warnf("dropping resolution of unknown kind %q for job %s",
				res.Kind, res.JobID)
		}
	}
}
