package routes

import (
	"github.com/sitecrew/api/internal/infra/http/handler"
	"github.com/sitecrew/api/internal/infra/http/middleware"
)

// registerProjectRoutes registers project and access-grant endpoints.
// Authorization happens in the services against the explicit principal;
// the routes only require authentication and company membership.
func registerProjectRoutes(router Router, h *handler.ProjectHandler, auth Middleware) {
	router.Group("/api/v1/projects", func(r Router) {
		r.POST("/", h.Create)
		r.GET("/", h.List)
		r.GET("/{projectID}", h.Get)

		r.POST("/{projectID}/access", h.GrantAccess)
		r.GET("/{projectID}/access", h.ListAccess)
		r.DELETE("/{projectID}/access/{accessID}", h.RevokeAccess)
	}, auth, middleware.RequireMember())
}
