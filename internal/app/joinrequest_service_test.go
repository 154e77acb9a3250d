package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/joinrequest"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/logger"
)

type joinRequestFixture struct {
	svc       *JoinRequestService
	requests  *mockJoinRequestRepo
	companies *mockCompanyRepo
	users     *mockUserRepo
	company   *company.Company
	admin     *user.User
}

func newJoinRequestFixture(t *testing.T) *joinRequestFixture {
	t.Helper()
	users := newMockUserRepo()
	companies := newMockCompanyRepo(users)
	requests := newMockJoinRequestRepo(users)

	c := fixtureCompany("Acme")
	companies.add(c)
	admin := fixtureMember(c.ID(), company.RoleAdmin)
	users.add(admin)

	return &joinRequestFixture{
		svc:       NewJoinRequestService(requests, companies, users, logger.NewNop()),
		requests:  requests,
		companies: companies,
		users:     users,
		company:   c,
		admin:     admin,
	}
}

// submit files a pending request for a fresh unaffiliated user.
func (f *joinRequestFixture) submit(t *testing.T) (*joinrequest.JoinRequest, *user.User) {
	t.Helper()
	requester := fixtureUser()
	f.users.add(requester)
	jr, err := f.svc.Submit(context.Background(), SubmitInput{Code: f.company.InviteCode()}, requester.ID())
	require.NoError(t, err)
	return jr, requester
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("by code", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		requester := fixtureUser()
		f.users.add(requester)

		jr, err := f.svc.Submit(ctx, SubmitInput{Code: f.company.InviteCode()}, requester.ID())
		require.NoError(t, err)

		assert.Equal(t, joinrequest.StatusPending, jr.Status())
		assert.Equal(t, f.company.ID(), jr.CompanyID())
		assert.Equal(t, requester.ID(), jr.UserID())
		assert.False(t, requester.IsMember(), "submitting must not bind the user")
	})

	t.Run("by token", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		requester := fixtureUser()
		f.users.add(requester)

		jr, err := f.svc.Submit(ctx, SubmitInput{Token: f.company.InviteToken()}, requester.ID())
		require.NoError(t, err)
		assert.Equal(t, f.company.ID(), jr.CompanyID())
	})

	t.Run("requires exactly one credential", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		requester := fixtureUser()
		f.users.add(requester)

		_, err := f.svc.Submit(ctx, SubmitInput{}, requester.ID())
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = f.svc.Submit(ctx, SubmitInput{
			Code:  f.company.InviteCode(),
			Token: f.company.InviteToken(),
		}, requester.ID())
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("member cannot submit", func(t *testing.T) {
		f := newJoinRequestFixture(t)

		_, err := f.svc.Submit(ctx, SubmitInput{Code: f.company.InviteCode()}, f.admin.ID())
		assert.ErrorIs(t, err, user.ErrAlreadyMember)
	})

	t.Run("duplicate pending request", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		_, requester := f.submit(t)

		_, err := f.svc.Submit(ctx, SubmitInput{Code: f.company.InviteCode()}, requester.ID())
		assert.ErrorIs(t, err, joinrequest.ErrDuplicateRequest)
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		requester := fixtureUser()
		f.users.add(requester)

		_, err := f.svc.Submit(ctx, SubmitInput{Code: "000000"}, requester.ID())
		assert.ErrorIs(t, err, company.ErrInviteInvalid)
	})

	t.Run("expired token rejected, code still works", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		past := time.Now().UTC().Add(-time.Minute)
		stale := company.Reconstitute(
			shared.NewID(), "Stale Co", shared.NewID(),
			"765432", "stale-token-0123456789abcdef", &past,
			time.Now().UTC(),
		)
		f.companies.add(stale)
		requester := fixtureUser()
		f.users.add(requester)

		_, err := f.svc.Submit(ctx, SubmitInput{Token: stale.InviteToken()}, requester.ID())
		assert.ErrorIs(t, err, company.ErrInviteExpired)

		_, err = f.svc.Submit(ctx, SubmitInput{Code: stale.InviteCode()}, requester.ID())
		assert.NoError(t, err)
	})
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	f := newJoinRequestFixture(t)
	jr, requester := f.submit(t)

	t.Run("admin sees requester identity", func(t *testing.T) {
		pending, err := f.svc.ListPending(ctx, f.company.ID().String(), f.admin)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, jr.ID(), pending[0].ID)
		assert.Equal(t, requester.Name(), pending[0].UserName)
		assert.Equal(t, requester.Email(), pending[0].UserEmail)
	})

	t.Run("plain member is forbidden", func(t *testing.T) {
		member := fixtureMember(f.company.ID(), company.RoleEngineer)

		_, err := f.svc.ListPending(ctx, f.company.ID().String(), member)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin of another company is forbidden", func(t *testing.T) {
		foreign := fixtureMember(shared.NewID(), company.RoleAdmin)

		_, err := f.svc.ListPending(ctx, f.company.ID().String(), foreign)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("binds the requester with the assigned role", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, requester := f.submit(t)

		decided, err := f.svc.Approve(ctx, jr.ID().String(), ApproveInput{Role: "engineer"}, f.admin)
		require.NoError(t, err)

		assert.Equal(t, joinrequest.StatusApproved, decided.Status())
		require.NotNil(t, decided.AssignedRole())
		assert.Equal(t, company.RoleEngineer, *decided.AssignedRole())
		assert.Equal(t, f.admin.ID(), *decided.DecidedBy())
		assert.True(t, requester.MemberOf(f.company.ID()))
		assert.Equal(t, user.StatusActive, requester.Status())
	})

	t.Run("empty role falls back to the default", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, requester := f.submit(t)

		decided, err := f.svc.Approve(ctx, jr.ID().String(), ApproveInput{}, f.admin)
		require.NoError(t, err)
		assert.Equal(t, company.DefaultRole, *decided.AssignedRole())
		assert.Equal(t, company.DefaultRole, requester.Role())
	})

	t.Run("invalid role", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, requester := f.submit(t)

		_, err := f.svc.Approve(ctx, jr.ID().String(), ApproveInput{Role: "owner"}, f.admin)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.False(t, requester.IsMember())
	})

	t.Run("non-admin cannot decide", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, _ := f.submit(t)
		member := fixtureMember(f.company.ID(), company.RoleEngineer)

		_, err := f.svc.Approve(ctx, jr.ID().String(), ApproveInput{}, member)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("already decided", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, _ := f.submit(t)

		_, err := f.svc.Approve(ctx, jr.ID().String(), ApproveInput{}, f.admin)
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, jr.ID().String(), ApproveInput{}, f.admin)
		assert.ErrorIs(t, err, joinrequest.ErrAlreadyDecided)
	})

	t.Run("requester joined elsewhere in the meantime", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, requester := f.submit(t)
		require.NoError(t, requester.BindToCompany(shared.NewID(), company.RoleMember))

		_, err := f.svc.Approve(ctx, jr.ID().String(), ApproveInput{}, f.admin)
		assert.ErrorIs(t, err, user.ErrAlreadyMember)

		stored, getErr := f.requests.GetByID(ctx, jr.ID())
		require.NoError(t, getErr)
		assert.True(t, stored.IsPending(), "failed approval must not decide the request")
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newJoinRequestFixture(t)

		_, err := f.svc.Approve(ctx, shared.NewID().String(), ApproveInput{}, f.admin)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("requester stays unaffiliated", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, requester := f.submit(t)

		decided, err := f.svc.Reject(ctx, jr.ID().String(), f.admin)
		require.NoError(t, err)

		assert.Equal(t, joinrequest.StatusRejected, decided.Status())
		assert.Nil(t, decided.AssignedRole())
		assert.False(t, requester.IsMember())
	})

	t.Run("rejected requester may submit again", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, requester := f.submit(t)

		_, err := f.svc.Reject(ctx, jr.ID().String(), f.admin)
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, SubmitInput{Code: f.company.InviteCode()}, requester.ID())
		assert.NoError(t, err)
	})

	t.Run("already decided", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, _ := f.submit(t)

		_, err := f.svc.Reject(ctx, jr.ID().String(), f.admin)
		require.NoError(t, err)

		_, err = f.svc.Reject(ctx, jr.ID().String(), f.admin)
		assert.ErrorIs(t, err, joinrequest.ErrAlreadyDecided)
	})

	t.Run("non-admin cannot decide", func(t *testing.T) {
		f := newJoinRequestFixture(t)
		jr, _ := f.submit(t)
		member := fixtureMember(f.company.ID(), company.RoleAccountant)

		_, err := f.svc.Reject(ctx, jr.ID().String(), member)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
