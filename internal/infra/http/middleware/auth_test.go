package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/project"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/jwt"
	"github.com/sitecrew/api/pkg/logger"
)

type stubUserRepo struct {
	users map[string]*user.User
}

func (s *stubUserRepo) Create(context.Context, *user.User) error { return nil }

func (s *stubUserRepo) GetByID(_ context.Context, id shared.ID) (*user.User, error) {
	if u, ok := s.users[id.String()]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubUserRepo) ListByCompany(context.Context, shared.ID) ([]*user.User, error) {
	return nil, nil
}

type stubProjectRepo struct {
	projects map[string]*project.Project
}

func (s *stubProjectRepo) Create(context.Context, *project.Project) error { return nil }

func (s *stubProjectRepo) GetByID(_ context.Context, id shared.ID) (*project.Project, error) {
	if p, ok := s.projects[id.String()]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubProjectRepo) ListByCompany(context.Context, shared.ID) ([]*project.Project, error) {
	return nil, nil
}

type stubRoleChecker struct {
	role *project.Role
	err  error
}

func (s *stubRoleChecker) Check(context.Context, shared.ID, shared.ID) (*project.Role, error) {
	return s.role, s.err
}

func testTokens() *jwt.Generator {
	return jwt.NewGenerator(jwt.Config{
		Secret:          "test-secret-at-least-32-characters-long",
		Issuer:          "sitecrew-test",
		SessionDuration: time.Hour,
	})
}

func member(companyID shared.ID, role company.Role) *user.User {
	return user.Reconstitute(
		shared.NewID(), "Test User", "test@example.com",
		&companyID, user.StatusActive, role, time.Now().UTC(),
	)
}

// okHandler records whether the request got past the middleware chain.
func okHandler(reached *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := testTokens()
	companyID := shared.NewID()
	u := member(companyID, company.RoleEngineer)
	users := &stubUserRepo{users: map[string]*user.User{u.ID().String(): u}}
	log := logger.NewNop()

	newRequest := func(authorization string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if authorization != "" {
			r.Header.Set("Authorization", authorization)
		}
		return r
	}

	t.Run("valid token loads the principal", func(t *testing.T) {
		token, _, err := tokens.GenerateSessionToken(u.ID().String())
		require.NoError(t, err)

		var principal *user.User
		handler := Authenticate(tokens, users, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ = GetPrincipal(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("Bearer "+token))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, principal)
		assert.Equal(t, u.ID(), principal.ID())
	})

	t.Run("missing header", func(t *testing.T) {
		var reached bool
		handler := Authenticate(tokens, users, log)(okHandler(&reached))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("malformed header", func(t *testing.T) {
		var reached bool
		handler := Authenticate(tokens, users, log)(okHandler(&reached))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("Token abc"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewGenerator(jwt.Config{
			Secret:          "test-secret-at-least-32-characters-long",
			Issuer:          "sitecrew-test",
			SessionDuration: -time.Minute,
		})
		token, _, err := expired.GenerateSessionToken(u.ID().String())
		require.NoError(t, err)

		var reached bool
		handler := Authenticate(tokens, users, log)(okHandler(&reached))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("Bearer "+token))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "session expired")
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		token, _, err := tokens.GenerateSessionToken(shared.NewID().String())
		require.NoError(t, err)

		var reached bool
		handler := Authenticate(tokens, users, log)(okHandler(&reached))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("Bearer "+token))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})
}

func withPrincipal(r *http.Request, u *user.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, u))
}

func TestRequireMember(t *testing.T) {
	t.Run("member passes", func(t *testing.T) {
		var reached bool
		handler := RequireMember()(okHandler(&reached))

		r := withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), member(shared.NewID(), company.RoleMember))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		assert.True(t, reached)
	})

	t.Run("unaffiliated principal is forbidden", func(t *testing.T) {
		pending, err := user.New("Drifting", "drifting@example.com")
		require.NoError(t, err)

		var reached bool
		handler := RequireMember()(okHandler(&reached))

		r := withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), pending)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, reached)
	})

	t.Run("no principal in context", func(t *testing.T) {
		var reached bool
		handler := RequireMember()(okHandler(&reached))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})
}

func TestRequireCompanyRole(t *testing.T) {
	companyID := shared.NewID()

	run := func(u *user.User, roles ...company.Role) (*httptest.ResponseRecorder, bool) {
		var reached bool
		handler := RequireCompanyRole(roles...)(okHandler(&reached))
		r := withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), u)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec, reached
	}

	t.Run("admin passes an admin gate", func(t *testing.T) {
		_, reached := run(member(companyID, company.RoleAdmin), company.RoleAdmin)
		assert.True(t, reached)
	})

	t.Run("engineer fails an admin gate", func(t *testing.T) {
		rec, reached := run(member(companyID, company.RoleEngineer), company.RoleAdmin)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, reached)
	})

	t.Run("any listed role passes", func(t *testing.T) {
		_, reached := run(member(companyID, company.RoleAccountant), company.RoleAdmin, company.RoleAccountant)
		assert.True(t, reached)
	})
}

func TestRequireProjectRole(t *testing.T) {
	companyID := shared.NewID()
	creator := shared.NewID()
	p := project.Reconstitute(shared.NewID(), companyID, "Site Alpha", creator, time.Now().UTC())
	projects := &stubProjectRepo{projects: map[string]*project.Project{p.ID().String(): p}}

	run := func(u *user.User, checker ProjectRoleChecker, projectID string, roles ...project.Role) (*httptest.ResponseRecorder, bool) {
		var reached bool
		handler := RequireProjectRole(checker, projects, roles...)(okHandler(&reached))

		r := withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), u)
		r.SetPathValue("projectID", projectID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec, reached
	}

	t.Run("granted role passes", func(t *testing.T) {
		role := project.RoleEngineer
		_, reached := run(member(companyID, company.RoleEngineer), &stubRoleChecker{role: &role}, p.ID().String(), project.RoleEngineer)
		assert.True(t, reached)
	})

	t.Run("company admin passes without a grant", func(t *testing.T) {
		_, reached := run(member(companyID, company.RoleAdmin), &stubRoleChecker{}, p.ID().String(), project.RoleSubAdmin)
		assert.True(t, reached)
	})

	t.Run("member without a grant is forbidden", func(t *testing.T) {
		rec, reached := run(member(companyID, company.RoleEngineer), &stubRoleChecker{}, p.ID().String(), project.RoleEngineer)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, reached)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		role := project.RoleEngineer
		rec, reached := run(member(companyID, company.RoleEngineer), &stubRoleChecker{role: &role}, p.ID().String(), project.RoleSubAdmin)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, reached)
	})

	t.Run("outsider reads the project as missing", func(t *testing.T) {
		role := project.RoleEngineer
		rec, reached := run(member(shared.NewID(), company.RoleAdmin), &stubRoleChecker{role: &role}, p.ID().String())
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.False(t, reached)
	})

	t.Run("unknown project", func(t *testing.T) {
		rec, _ := run(member(companyID, company.RoleAdmin), &stubRoleChecker{}, shared.NewID().String())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed project id", func(t *testing.T) {
		rec, _ := run(member(companyID, company.RoleAdmin), &stubRoleChecker{}, "not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
