// Package project owns the set of projects and the invariants around naming,
// sharing and render attachment. The registry is the sole mutator of project
// state; the generation orchestrator communicates attachment intents to it
// instead of touching render lists directly.
package project

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/archway-no/archway/pkg/model"
)

// ErrEmptyName rejects create/rename with a blank project name.
var ErrEmptyName = errors.New("project name must be non-empty")

// ErrEmptyEmail rejects sharing with a blank address.
var ErrEmptyEmail = errors.New("share email must be non-empty")

// ErrProjectNotFound marks operations against an unknown project id.
var ErrProjectNotFound = errors.New("project not found")

// Registry is the project registry of one session. Listing order is
// most-recent-first.
type Registry struct {
	mu       sync.Mutex
	log      *log.Entry
	projects []*model.Project
	// selected is compared by id against current contents, never by held
	// reference: the registry, not a live pointer, is the system of record.
	selected model.ProjectID
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{log: log.WithField("component", "project-registry")}
}

// Create adds a project with a fresh id, prepending it so listings stay
// most-recent-first. A name that trims to empty is a validation rejection:
// no project is created.
func (r *Registry) Create(name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p := &model.Project{
		ID:        model.NewProjectID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.projects = append([]*model.Project{p}, r.projects...)
	r.log.Infof("created project %q (%s)", p.Name, p.ID)
	return r.copyOf(p), nil
}

// Rename updates a project's name in place, preserving its id, creation time
// and render list. The empty-name guard matches Create.
func (r *Registry) Rename(id model.ProjectID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(id)
	if p == nil {
		return errors.Wrapf(ErrProjectNotFound, "rename %s", id)
	}
	p.Name = newName
	return nil
}

// Remove deletes a project regardless of its render list. If it was the
// active selection, the selection is cleared. Removing an unknown id is a
// no-op.
func (r *Registry) Remove(id model.ProjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.projects {
		if p.ID == id {
			r.projects = append(r.projects[:i], r.projects[i+1:]...)
			if r.selected == id {
				r.selected = ""
			}
			r.log.Infof("removed project %q (%s)", p.Name, p.ID)
			return
		}
	}
}

// Share records the intent to grant access to the given address. Invitation
// delivery and the actual permission grant belong to the identity
// collaborator; the local contract is only validation and the recorded
// grant.
func (r *Registry) Share(id model.ProjectID, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(id)
	if p == nil {
		return errors.Wrapf(ErrProjectNotFound, "share %s", id)
	}
	p.Collaborators = append(p.Collaborators, email)
	r.log.Infof("recorded share of project %q with %s", p.Name, email)
	return nil
}

// AttachResult prepends a finished render to the project's list. It is
// called exclusively by the generation orchestrator on success. The target
// project may have been deleted while the job was in flight; that orphaned
// attachment is dropped silently here and must never crash the caller.
func (r *Registry) AttachResult(id model.ProjectID, result model.ImageRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(id)
	if p == nil {
		r.log.Infof("dropping render %s: project %s no longer exists", result.ID, id)
		return
	}
	p.Renders = append([]model.ImageRef{result}, p.Renders...)
}

// Exists reports whether the project id is present.
func (r *Registry) Exists(id model.ProjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(id) != nil
}

// Get returns a copy of the project with the given id.
func (r *Registry) Get(id model.ProjectID) (*model.Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(id)
	if p == nil {
		return nil, false
	}
	return r.copyOf(p), true
}

// List returns the projects most-recent-first.
func (r *Registry) List() []model.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, *r.copyOf(p))
	}
	return out
}

// Select marks the project as the active selection.
func (r *Registry) Select(id model.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(id) == nil {
		return errors.Wrapf(ErrProjectNotFound, "select %s", id)
	}
	r.selected = id
	return nil
}

// ClearSelection drops the active selection.
func (r *Registry) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = ""
}

// Selected returns a copy of the currently selected project, or nil when
// nothing is selected.
func (r *Registry) Selected() *model.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == "" {
		return nil
	}
	p := r.find(r.selected)
	if p == nil {
		// Removal clears the selection, so a dangling id should not occur.
		r.selected = ""
		return nil
	}
	return r.copyOf(p)
}

func (r *Registry) find(id model.ProjectID) *model.Project {
	for _, p := range r.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Registry) copyOf(p *model.Project) *model.Project {
	c := *p
	c.Renders = append([]model.ImageRef(nil), p.Renders...)
	c.Collaborators = append([]string(nil), p.Collaborators...)
	return &c
}
