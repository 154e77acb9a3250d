package routes

import (
	"github.com/sitecrew/api/internal/infra/http/handler"
	"github.com/sitecrew/api/internal/infra/http/middleware"
	"github.com/sitecrew/api/pkg/domain/company"
)

// registerMembershipRoutes registers company, invite and join-request
// endpoints.
func registerMembershipRoutes(
	router Router,
	companies *handler.CompanyHandler,
	joinRequests *handler.JoinRequestHandler,
	auth Middleware,
	inviteLimiter Middleware,
) {
	// Public invite resolution, throttled. No authentication so a
	// prospective member can preview the company before signing up.
	if inviteLimiter != nil {
		router.GET("/api/v1/invites/resolve", companies.ResolveInvite, inviteLimiter)
	} else {
		router.GET("/api/v1/invites/resolve", companies.ResolveInvite)
	}

	router.Group("/api/v1/companies", func(r Router) {
		r.POST("/", companies.Create)
		r.GET("/{companyID}", companies.Get)
		r.GET("/{companyID}/members", companies.Members)
		r.GET("/{companyID}/join-requests", joinRequests.ListPending, middleware.RequireCompanyRole(company.RoleAdmin))

		// Invite credential management, admin only.
		r.GET("/{companyID}/invite", companies.GetInvite, middleware.RequireCompanyRole(company.RoleAdmin))
		r.POST("/{companyID}/invite/rotate", companies.RotateInvite, middleware.RequireCompanyRole(company.RoleAdmin))
	}, auth)

	router.Group("/api/v1/join-requests", func(r Router) {
		r.POST("/", joinRequests.Submit, submitMiddlewares(inviteLimiter)...)
		r.POST("/{requestID}/approve", joinRequests.Approve)
		r.POST("/{requestID}/reject", joinRequests.Reject)
	}, auth)
}

func submitMiddlewares(inviteLimiter Middleware) []Middleware {
	if inviteLimiter == nil {
		return nil
	}
	return []Middleware{inviteLimiter}
}
