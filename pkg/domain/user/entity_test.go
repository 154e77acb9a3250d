package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/shared"
)

func TestNew(t *testing.T) {
	t.Run("starts unaffiliated", func(t *testing.T) {
		u, err := New("Dana", "dana@example.com")

		require.NoError(t, err)
		assert.Nil(t, u.CompanyID())
		assert.False(t, u.IsMember())
		assert.Equal(t, StatusPending, u.Status())
		assert.Equal(t, company.DefaultRole, u.Role())
	})

	t.Run("requires email", func(t *testing.T) {
		_, err := New("Dana", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestBindToCompany(t *testing.T) {
	companyID := shared.NewID()

	t.Run("activates membership", func(t *testing.T) {
		u, err := New("Dana", "dana@example.com")
		require.NoError(t, err)

		require.NoError(t, u.BindToCompany(companyID, company.RoleAdmin))

		assert.True(t, u.MemberOf(companyID))
		assert.True(t, u.IsCompanyAdmin(companyID))
		assert.Equal(t, StatusActive, u.Status())
	})

	t.Run("at most one company", func(t *testing.T) {
		u, err := New("Dana", "dana@example.com")
		require.NoError(t, err)
		require.NoError(t, u.BindToCompany(companyID, company.RoleMember))

		assert.ErrorIs(t, u.BindToCompany(shared.NewID(), company.RoleMember), ErrAlreadyMember)
		assert.True(t, u.MemberOf(companyID), "failed bind must not move the user")
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		u, err := New("Dana", "dana@example.com")
		require.NoError(t, err)

		assert.ErrorIs(t, u.BindToCompany(companyID, company.Role("owner")), shared.ErrValidation)
		assert.False(t, u.IsMember())
	})
}

func TestMembershipChecks(t *testing.T) {
	companyID := shared.NewID()
	otherID := shared.NewID()

	member := Reconstitute(shared.NewID(), "Eli", "eli@example.com", &companyID, StatusActive, company.RoleMember, time.Now())

	assert.True(t, member.MemberOf(companyID))
	assert.False(t, member.MemberOf(otherID))
	assert.False(t, member.IsCompanyAdmin(companyID), "plain member is not admin")

	admin := Reconstitute(shared.NewID(), "Ada", "ada@example.com", &companyID, StatusActive, company.RoleAdmin, time.Now())
	assert.True(t, admin.IsCompanyAdmin(companyID))
	assert.False(t, admin.IsCompanyAdmin(otherID), "admin rights do not cross companies")
}
