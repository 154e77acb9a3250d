package joinrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/shared"
)

func newPending(t *testing.T) *JoinRequest {
	t.Helper()
	jr, err := New(shared.NewID(), shared.NewID())
	require.NoError(t, err)
	return jr
}

func TestNew(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		jr := newPending(t)

		assert.Equal(t, StatusPending, jr.Status())
		assert.True(t, jr.IsPending())
		assert.Nil(t, jr.DecidedAt())
		assert.Nil(t, jr.DecidedBy())
		assert.Nil(t, jr.AssignedRole())
	})

	t.Run("requires user and company", func(t *testing.T) {
		_, err := New(shared.ID{}, shared.NewID())
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = New(shared.NewID(), shared.ID{})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestApprove(t *testing.T) {
	admin := shared.NewID()

	t.Run("records decision", func(t *testing.T) {
		jr := newPending(t)

		require.NoError(t, jr.Approve(admin, company.RoleEngineer))

		assert.Equal(t, StatusApproved, jr.Status())
		require.NotNil(t, jr.DecidedBy())
		assert.Equal(t, admin, *jr.DecidedBy())
		require.NotNil(t, jr.AssignedRole())
		assert.Equal(t, company.RoleEngineer, *jr.AssignedRole())
		assert.NotNil(t, jr.DecidedAt())
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		jr := newPending(t)
		err := jr.Approve(admin, company.Role("owner"))

		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.True(t, jr.IsPending(), "failed approval must not change state")
	})

	t.Run("second approval fails", func(t *testing.T) {
		jr := newPending(t)
		require.NoError(t, jr.Approve(admin, company.RoleMember))

		assert.ErrorIs(t, jr.Approve(admin, company.RoleMember), ErrAlreadyDecided)
	})

	t.Run("approving a rejected request fails", func(t *testing.T) {
		jr := newPending(t)
		require.NoError(t, jr.Reject(admin))

		assert.ErrorIs(t, jr.Approve(admin, company.RoleMember), ErrAlreadyDecided)
	})
}

func TestReject(t *testing.T) {
	admin := shared.NewID()

	t.Run("records decision without role", func(t *testing.T) {
		jr := newPending(t)

		require.NoError(t, jr.Reject(admin))

		assert.Equal(t, StatusRejected, jr.Status())
		require.NotNil(t, jr.DecidedBy())
		assert.Equal(t, admin, *jr.DecidedBy())
		assert.Nil(t, jr.AssignedRole())
	})

	t.Run("second rejection fails", func(t *testing.T) {
		jr := newPending(t)
		require.NoError(t, jr.Reject(admin))

		assert.ErrorIs(t, jr.Reject(admin), ErrAlreadyDecided)
	})
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, Status("draft").IsValid())
}
