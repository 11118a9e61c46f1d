package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archway-no/archway/pkg/model"
)

func TestInviteEmptyEmailIsNoop(t *testing.T) {
	r := New("Kari", "kari@archway.no")

	m, err := r.Invite("   ", model.ViewerRole)
	require.ErrorIs(t, err, ErrEmptyEmail)
	assert.Nil(t, m)
	assert.Len(t, r.List(), 1)
}

func TestInviteCreatesPendingMember(t *testing.T) {
	r := New("Kari", "kari@archway.no")
	activeBefore, pendingBefore := r.Counts()

	m, err := r.Invite(" a@b.com ", model.ViewerRole)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", m.Email)
	assert.Equal(t, model.PendingMember, m.Status)
	assert.Equal(t, model.ViewerRole, m.Role)
	assert.False(t, m.DisplayName.Valid, "display name stays null until signup")

	active, pending := r.Counts()
	assert.Equal(t, activeBefore, active)
	assert.Equal(t, pendingBefore+1, pending)
	assert.Len(t, r.List(), 2)
}

func TestBootstrapAdminIsProtected(t *testing.T) {
	r := New("Kari", "kari@archway.no")
	adminID := r.BootstrapID()

	require.ErrorIs(t, r.Remove(adminID), ErrProtectedMember)
	assert.Len(t, r.List(), 1)

	require.ErrorIs(t, r.SetRole(adminID, model.ViewerRole), ErrProtectedMember)
	role, ok := r.RoleOf(adminID)
	require.True(t, ok)
	assert.Equal(t, model.AdminRole, role)
}

func TestRemoveAndSetRole(t *testing.T) {
	r := New("Kari", "kari@archway.no")
	m, err := r.Invite("ola@archway.no", model.ViewerRole)
	require.NoError(t, err)

	require.NoError(t, r.SetRole(m.ID, model.EditorRole))
	role, ok := r.RoleOf(m.ID)
	require.True(t, ok)
	assert.Equal(t, model.EditorRole, role)

	got, ok := r.Get(m.ID)
	require.True(t, ok)
	assert.Equal(t, model.PendingMember, got.Status, "role change must not touch status")

	require.NoError(t, r.Remove(m.ID))
	assert.Len(t, r.List(), 1)

	// Removing an unknown id is a no-op.
	require.NoError(t, r.Remove("gone"))
}

func TestActivate(t *testing.T) {
	r := New("Kari", "kari@archway.no")
	m, err := r.Invite("ola@archway.no", model.EditorRole)
	require.NoError(t, err)

	require.NoError(t, r.Activate(m.ID, "Ola Nordmann"))
	got, ok := r.Get(m.ID)
	require.True(t, ok)
	assert.Equal(t, model.ActiveMember, got.Status)
	assert.Equal(t, "Ola Nordmann", got.DisplayName.ValueOrZero())

	active, pending := r.Counts()
	assert.Equal(t, 2, active)
	assert.Equal(t, 0, pending)

	assert.Error(t, r.Activate("gone", "x"))
}
