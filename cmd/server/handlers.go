package main

import (
	"github.com/sitecrew/api/internal/infra/http/handler"
	"github.com/sitecrew/api/internal/infra/http/routes"
	"github.com/sitecrew/api/internal/infra/postgres"
	"github.com/sitecrew/api/pkg/logger"
	"github.com/sitecrew/api/pkg/validator"
)

// NewHandlers creates all HTTP handlers for route registration.
func NewHandlers(db *postgres.DB, services *Services, v *validator.Validator, log *logger.Logger) routes.Handlers {
	return routes.Handlers{
		Health:      handler.NewHealthHandler(db),
		Identity:    handler.NewIdentityHandler(services.Identity, v, log),
		Company:     handler.NewCompanyHandler(services.Company, v, log),
		JoinRequest: handler.NewJoinRequestHandler(services.JoinRequest, v, log),
		Project:     handler.NewProjectHandler(services.Project, services.ProjectAccess, v, log),
	}
}
