package model

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// Role is a team member's role within the studio.
type Role string

const (
	// AdminRole can manage members, projects and training.
	AdminRole Role = "ADMIN"
	// EditorRole can manage projects and trigger training.
	EditorRole Role = "EDITOR"
	// ViewerRole has read-only access.
	ViewerRole Role = "VIEWER"
)

// Roles lists every valid role.
var Roles = []Role{AdminRole, EditorRole, ViewerRole}

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case AdminRole, EditorRole, ViewerRole:
		return r, nil
	default:
		return "", errors.Errorf("invalid role: %q", s)
	}
}

// CanTrain reports whether the role may trigger a fine-tuning run.
func (r Role) CanTrain() bool {
	switch r {
	case AdminRole, EditorRole:
		return true
	case ViewerRole:
		return false
	default:
		return false
	}
}

// MemberStatus is a team member's signup status.
type MemberStatus string

const (
	// ActiveMember has completed signup.
	ActiveMember MemberStatus = "ACTIVE"
	// PendingMember has been invited but has not completed signup.
	PendingMember MemberStatus = "PENDING"
)

// TeamMember is one member of the studio team. Email is immutable once set;
// DisplayName stays null until the invitee completes signup.
type TeamMember struct {
	ID          MemberID     `json:"id"`
	DisplayName null.String  `json:"display_name"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Status      MemberStatus `json:"status"`
	JoinedAt    time.Time    `json:"joined_at"`
}
