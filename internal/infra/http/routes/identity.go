package routes

import (
	"github.com/sitecrew/api/internal/infra/http/handler"
)

// registerIdentityRoutes registers registration, session and profile
// endpoints.
func registerIdentityRoutes(router Router, h *handler.IdentityHandler, auth Middleware) {
	router.Group("/api/v1/auth", func(r Router) {
		r.POST("/register", h.Register)
		r.POST("/sessions", h.IssueSession)
	})

	router.GET("/api/v1/me", h.Me, auth)
}
