package company

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/api/pkg/domain/shared"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

func TestNew(t *testing.T) {
	founder := shared.NewID()

	t.Run("generates invite credentials", func(t *testing.T) {
		c, err := New("Acme Construction", founder)

		require.NoError(t, err)
		assert.False(t, c.ID().IsZero())
		assert.Equal(t, "Acme Construction", c.Name())
		assert.Equal(t, founder, c.CreatedBy())
		assert.Regexp(t, codePattern, c.InviteCode())
		assert.NotEmpty(t, c.InviteToken())
		assert.Nil(t, c.InviteTokenExpiresAt(), "initial token must not expire")
	})

	t.Run("requires name", func(t *testing.T) {
		_, err := New("", founder)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("requires creator", func(t *testing.T) {
		_, err := New("Acme", shared.ID{})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("credentials differ between companies", func(t *testing.T) {
		a, err := New("A", founder)
		require.NoError(t, err)
		b, err := New("B", founder)
		require.NoError(t, err)

		assert.NotEqual(t, a.InviteToken(), b.InviteToken())
	})
}

func TestRotateInviteToken(t *testing.T) {
	founder := shared.NewID()

	t.Run("replaces token and sets expiry", func(t *testing.T) {
		c, err := New("Acme", founder)
		require.NoError(t, err)

		oldToken := c.InviteToken()
		oldCode := c.InviteCode()

		require.NoError(t, c.RotateInviteToken())

		assert.NotEqual(t, oldToken, c.InviteToken())
		assert.Equal(t, oldCode, c.InviteCode(), "rotation must not touch the code")
		require.NotNil(t, c.InviteTokenExpiresAt())
		assert.WithinDuration(t, time.Now().UTC().Add(InviteLinkTTL), *c.InviteTokenExpiresAt(), 5*time.Second)
	})

	t.Run("second rotation restarts the window", func(t *testing.T) {
		c, err := New("Acme", founder)
		require.NoError(t, err)

		require.NoError(t, c.RotateInviteToken())
		first := *c.InviteTokenExpiresAt()

		require.NoError(t, c.RotateInviteToken())
		assert.False(t, c.InviteTokenExpiresAt().Before(first))
	})
}

func TestInviteTokenExpired(t *testing.T) {
	id := shared.NewID()

	t.Run("nil expiry never expires", func(t *testing.T) {
		c := Reconstitute(id, "Acme", id, "123456", "tok", nil, time.Now())
		assert.False(t, c.InviteTokenExpired())
	})

	t.Run("past expiry", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		c := Reconstitute(id, "Acme", id, "123456", "tok", &past, time.Now())
		assert.True(t, c.InviteTokenExpired())
	})

	t.Run("future expiry", func(t *testing.T) {
		future := time.Now().UTC().Add(time.Minute)
		c := Reconstitute(id, "Acme", id, "123456", "tok", &future, time.Now())
		assert.False(t, c.InviteTokenExpired())
	})
}

func TestGenerateInviteCode(t *testing.T) {
	for range 50 {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
	}
}

func TestBuildInviteLink(t *testing.T) {
	link := BuildInviteLink("https://app.example.com", "a+b/c")
	assert.Equal(t, "https://app.example.com/join-company?token=a%2Bb%2Fc", link)
}

func TestParseRole(t *testing.T) {
	for _, role := range AssignableRoles {
		parsed, ok := ParseRole(role.String())
		assert.True(t, ok)
		assert.Equal(t, role, parsed)
	}

	_, ok := ParseRole("owner")
	assert.False(t, ok)
}
