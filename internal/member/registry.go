// Package member owns the studio team: members, roles, the invitation
// lifecycle and the permission reads the rest of the core depends on. It is
// the single source of truth for roles; no other component mutates them.
package member

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	"github.com/archway-no/archway/pkg/model"
)

// ErrEmptyEmail rejects invitations with a blank address.
var ErrEmptyEmail = errors.New("email must be non-empty")

// ErrProtectedMember rejects changes to the bootstrap admin.
var ErrProtectedMember = errors.New("the bootstrap admin cannot be modified")

// ErrMemberNotFound marks operations against an unknown member id.
var ErrMemberNotFound = errors.New("member not found")

// Registry is the team membership registry of one session.
type Registry struct {
	mu          sync.Mutex
	log         *log.Entry
	members     []*model.TeamMember
	bootstrapID model.MemberID
}

// New returns a registry seeded with the protected bootstrap admin, who is
// active from the start and exempt from removal and role changes.
func New(adminName, adminEmail string) *Registry {
	admin := &model.TeamMember{
		ID:          model.NewMemberID(),
		DisplayName: null.StringFrom(adminName),
		Email:       adminEmail,
		Role:        model.AdminRole,
		Status:      model.ActiveMember,
		JoinedAt:    time.Now().UTC(),
	}
	return &Registry{
		log:         log.WithField("component", "member-registry"),
		members:     []*model.TeamMember{admin},
		bootstrapID: admin.ID,
	}
}

// BootstrapID returns the protected admin's id.
func (r *Registry) BootstrapID() model.MemberID {
	return r.bootstrapID
}

// Invite creates a pending member with the given role. A blank email is a
// validation rejection: no member is created.
func (r *Registry) Invite(email string, role model.Role) (*model.TeamMember, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmptyEmail
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m := &model.TeamMember{
		ID:       model.NewMemberID(),
		Email:    email,
		Role:     role,
		Status:   model.PendingMember,
		JoinedAt: time.Now().UTC(),
	}
	r.members = append(r.members, m)
	r.log.Infof("invited %s as %s", email, role)
	return r.copyOf(m), nil
}

// Remove deletes a member. The bootstrap admin is protected; removing an
// unknown id is a no-op.
func (r *Registry) Remove(id model.MemberID) error {
	if id == r.bootstrapID {
		return ErrProtectedMember
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.ID == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return nil
		}
	}
	return nil
}

// SetRole overwrites a member's role with no effect on status. The bootstrap
// admin is protected.
func (r *Registry) SetRole(id model.MemberID, role model.Role) error {
	if id == r.bootstrapID {
		return ErrProtectedMember
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			m.Role = role
			return nil
		}
	}
	return errors.Wrapf(ErrMemberNotFound, "set role for %s", id)
}

// Activate flips a pending member to active and records the display name the
// invitee chose at signup. It is the reconciliation entry point for the
// external identity collaborator that owns the signup flow itself.
func (r *Registry) Activate(id model.MemberID, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			m.Status = model.ActiveMember
			if displayName != "" {
				m.DisplayName = null.StringFrom(displayName)
			}
			return nil
		}
	}
	return errors.Wrapf(ErrMemberNotFound, "activate %s", id)
}

// RoleOf returns a member's role, if the member exists.
func (r *Registry) RoleOf(id model.MemberID) (model.Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			return m.Role, true
		}
	}
	return "", false
}

// Counts derives the active and pending member counts by scanning current
// membership. The counts are never stored, so they cannot drift.
func (r *Registry) Counts() (active, pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		switch m.Status {
		case model.ActiveMember:
			active++
		case model.PendingMember:
			pending++
		}
	}
	return active, pending
}

// List returns the members in insertion order.
func (r *Registry) List() []model.TeamMember {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.TeamMember, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	return out
}

// Get returns the member with the given id.
func (r *Registry) Get(id model.MemberID) (*model.TeamMember, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			return r.copyOf(m), true
		}
	}
	return nil, false
}

func (r *Registry) copyOf(m *model.TeamMember) *model.TeamMember {
	c := *m
	return &c
}
