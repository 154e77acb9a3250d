package main

import (
	"github.com/sitecrew/api/internal/app"
	"github.com/sitecrew/api/internal/config"
	"github.com/sitecrew/api/pkg/jwt"
	"github.com/sitecrew/api/pkg/logger"
)

// Services holds all application service instances.
type Services struct {
	Identity      *app.IdentityService
	Company       *app.CompanyService
	JoinRequest   *app.JoinRequestService
	Project       *app.ProjectService
	ProjectAccess *app.ProjectAccessService

	JWTGenerator *jwt.Generator
}

// NewServices wires application services to their repositories.
func NewServices(cfg *config.Config, repos *Repositories, log *logger.Logger) *Services {
	tokens := jwt.NewGenerator(jwt.Config{
		Secret:          cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.JWTIssuer,
		SessionDuration: cfg.Auth.SessionDuration,
	})

	return &Services{
		Identity:      app.NewIdentityService(repos.User, tokens, log),
		Company:       app.NewCompanyService(repos.Company, repos.User, cfg.Invite.BaseURL, log),
		JoinRequest:   app.NewJoinRequestService(repos.JoinRequest, repos.Company, repos.User, log),
		Project:       app.NewProjectService(repos.Project, log),
		ProjectAccess: app.NewProjectAccessService(repos.ProjectAccess, repos.Project, repos.User, log),
		JWTGenerator:  tokens,
	}
}
