// Package routes registers all HTTP routes for the API.
package routes

import (
	"time"

	"github.com/sitecrew/api/internal/config"
	infrahttp "github.com/sitecrew/api/internal/infra/http"
	"github.com/sitecrew/api/internal/infra/http/handler"
	"github.com/sitecrew/api/internal/infra/http/middleware"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/logger"
)

// Middleware is an alias to the http package's Middleware type.
type Middleware = infrahttp.Middleware

// Router is an alias to the http package's Router interface.
type Router = infrahttp.Router

// Handlers holds all HTTP handlers for route registration.
type Handlers struct {
	Health      *handler.HealthHandler
	Identity    *handler.IdentityHandler
	Company     *handler.CompanyHandler
	JoinRequest *handler.JoinRequestHandler
	Project     *handler.ProjectHandler
}

// Register registers all application routes and returns a cleanup
// function for the route-level rate limiter.
//
// Routes are organized across files by domain:
//   - identity.go: registration, sessions, profile
//   - membership.go: companies, invites, join requests
//   - projects.go: projects and access grants
//   - misc.go: health and metrics
func Register(
	router Router,
	h Handlers,
	cfg *config.Config,
	log *logger.Logger,
	auth AuthConfig,
) func() {
	authMiddleware := middleware.Authenticate(auth.Tokens, auth.Users, log)

	// Invite resolution and join submission take guessable six-digit
	// codes, so they get a stricter limiter than the global one.
	inviteLimiter, stopLimiter := inviteRateLimit(cfg)

	registerMiscRoutes(router, h.Health)
	registerIdentityRoutes(router, h.Identity, authMiddleware)
	registerMembershipRoutes(router, h.Company, h.JoinRequest, authMiddleware, inviteLimiter)
	registerProjectRoutes(router, h.Project, authMiddleware)

	return stopLimiter
}

// AuthConfig holds the dependencies of the authentication middleware.
type AuthConfig struct {
	Tokens middleware.TokenVerifier
	Users  user.Repository
}

func inviteRateLimit(cfg *config.Config) (Middleware, func()) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}
	}
	rl := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSec/2,
		cfg.RateLimit.Burst/2+1,
		5*time.Minute,
	)
	return rl.Middleware(), rl.Stop
}
