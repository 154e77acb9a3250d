package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sitecrew/api/internal/metrics"
	"github.com/sitecrew/api/pkg/apierror"
	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/project"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/jwt"
	"github.com/sitecrew/api/pkg/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*jwt.Claims, error)
}

// Authenticate resolves the Bearer token to a user and stores the
// principal in the request context. The session token carries only the
// user id; company affiliation and role are always loaded fresh so that
// approvals and revocations take effect on the next request.
func Authenticate(tokens TokenVerifier, users user.Repository, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				apierror.Unauthorized("missing or malformed authorization header").WriteJSON(w)
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					apierror.Unauthorized("session expired").WriteJSON(w)
					return
				}
				apierror.Unauthorized("invalid session token").WriteJSON(w)
				return
			}

			userID, err := shared.IDFromString(claims.UserID)
			if err != nil {
				apierror.Unauthorized("invalid session token").WriteJSON(w)
				return
			}

			principal, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					apierror.Unauthorized("unknown user").WriteJSON(w)
					return
				}
				log.WithContext(r.Context()).Error("principal lookup failed", "error", err)
				apierror.InternalError(err).WriteJSON(w)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, logger.ContextKeyUserID, principal.ID().String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal returns the authenticated user from the context.
func GetPrincipal(ctx context.Context) (*user.User, bool) {
	principal, ok := ctx.Value(principalKey).(*user.User)
	return principal, ok
}

// RequireMember rejects principals that do not belong to a company.
func RequireMember() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				apierror.Unauthorized("authentication required").WriteJSON(w)
				return
			}
			if !principal.IsMember() {
				metrics.AuthorizationDenialsTotal.WithLabelValues("company").Inc()
				apierror.Forbidden("company membership required").WriteJSON(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCompanyRole rejects members whose company role is not in roles.
func RequireCompanyRole(roles ...company.Role) func(http.Handler) http.Handler {
	allowed := make(map[company.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				apierror.Unauthorized("authentication required").WriteJSON(w)
				return
			}
			if !principal.IsMember() {
				metrics.AuthorizationDenialsTotal.WithLabelValues("company").Inc()
				apierror.Forbidden("company membership required").WriteJSON(w)
				return
			}
			if _, ok := allowed[principal.Role()]; !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("company").Inc()
				apierror.Forbidden("insufficient company role").WriteJSON(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProjectRoleChecker reports a user's granted role on a project, or nil
// when no grant exists.
type ProjectRoleChecker interface {
	Check(ctx context.Context, projectID, userID shared.ID) (*project.Role, error)
}

// RequireProjectRole rejects principals without one of the given project
// roles on the project named by the projectID URL parameter. Company
// admins pass without an explicit grant on projects of their own company.
func RequireProjectRole(checker ProjectRoleChecker, projects project.Repository, roles ...project.Role) func(http.Handler) http.Handler {
	allowed := make(map[project.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				apierror.Unauthorized("authentication required").WriteJSON(w)
				return
			}

			projectID, err := shared.IDFromString(r.PathValue("projectID"))
			if err != nil {
				apierror.BadRequest("invalid project id").WriteJSON(w)
				return
			}

			p, err := projects.GetByID(r.Context(), projectID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					apierror.NotFound("project").WriteJSON(w)
					return
				}
				apierror.InternalError(err).WriteJSON(w)
				return
			}

			// Resources outside the principal's company read as absent.
			if !principal.MemberOf(p.CompanyID()) {
				metrics.AuthorizationDenialsTotal.WithLabelValues("project").Inc()
				apierror.NotFound("project").WriteJSON(w)
				return
			}

			if principal.IsCompanyAdmin(p.CompanyID()) {
				next.ServeHTTP(w, r)
				return
			}

			granted, err := checker.Check(r.Context(), projectID, principal.ID())
			if err != nil {
				apierror.InternalError(err).WriteJSON(w)
				return
			}
			if granted == nil {
				metrics.AuthorizationDenialsTotal.WithLabelValues("project").Inc()
				apierror.Forbidden("no access to this project").WriteJSON(w)
				return
			}
			if _, ok := allowed[*granted]; !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("project").Inc()
				apierror.Forbidden("insufficient project role").WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
