package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitecrew/api/internal/metrics"
	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/logger"
)

// credentialRetries bounds regeneration attempts when a generated invite
// code or token collides with an existing one.
const credentialRetries = 3

// CompanyService handles company and invite-credential operations.
type CompanyService struct {
	companyRepo company.Repository
	userRepo    user.Repository
	inviteBase  string
	logger      *logger.Logger
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo company.Repository, userRepo user.Repository, inviteBase string, log *logger.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		inviteBase:  inviteBase,
		logger:      log.With("service", "company"),
	}
}

// CreateCompanyInput represents the input for creating a company.
type CreateCompanyInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// CreateCompany creates a company and binds the founder to it as an
// active admin in one transaction. Generated invite credentials are
// regenerated on collision.
func (s *CompanyService) CreateCompany(ctx context.Context, input CreateCompanyInput, founderID shared.ID) (*company.Company, error) {
	s.logger.Info("creating company", "name", input.Name, "founder", founderID.String())

	founder, err := s.userRepo.GetByID(ctx, founderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load founder: %w", err)
	}
	if founder.IsMember() {
		return nil, user.ErrAlreadyMember
	}

	exists, err := s.companyRepo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check company name: %w", err)
	}
	if exists {
		return nil, company.ErrNameTaken
	}

	var c *company.Company
	for attempt := 0; ; attempt++ {
		c, err = company.New(input.Name, founderID)
		if err != nil {
			return nil, err
		}

		err = s.companyRepo.CreateWithFounder(ctx, c, founderID)
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < credentialRetries {
			// The name was pre-checked, so a uniqueness violation here is
			// almost certainly a credential collision. The name race loses
			// after the retries run out.
			continue
		}
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, company.ErrNameTaken
		}
		return nil, err
	}

	metrics.CompaniesCreated.Inc()
	s.logger.Info("company created", "id", c.ID().String(), "name", c.Name())

	return c, nil
}

// GetCompany retrieves a company the actor belongs to.
func (s *CompanyService) GetCompany(ctx context.Context, companyID string, actor *user.User) (*company.Company, error) {
	parsedID, err := shared.IDFromString(companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	if !actor.MemberOf(parsedID) {
		return nil, shared.ErrForbidden
	}

	return s.companyRepo.GetByID(ctx, parsedID)
}

// InviteCredentials carries a company's current invite credentials.
type InviteCredentials struct {
	Code      string
	Token     string
	Link      string
	ExpiresAt *time.Time
}

// GetInvite returns the current invite credentials of the actor's
// company. Admin only.
func (s *CompanyService) GetInvite(ctx context.Context, companyID string, actor *user.User) (*InviteCredentials, error) {
	parsedID, err := shared.IDFromString(companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	if !actor.IsCompanyAdmin(parsedID) {
		return nil, shared.ErrForbidden
	}

	c, err := s.companyRepo.GetByID(ctx, parsedID)
	if err != nil {
		return nil, err
	}

	return s.credentials(c), nil
}

// RotateInviteLink replaces the company's invite token with a fresh
// one valid for thirty minutes. The previous token dies immediately;
// the six-digit code is untouched. Admin only. Concurrent rotations
// are last-writer-wins.
func (s *CompanyService) RotateInviteLink(ctx context.Context, companyID string, actor *user.User) (*InviteCredentials, error) {
	parsedID, err := shared.IDFromString(companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	if !actor.IsCompanyAdmin(parsedID) {
		return nil, shared.ErrForbidden
	}

	c, err := s.companyRepo.GetByID(ctx, parsedID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := c.RotateInviteToken(); err != nil {
			return nil, err
		}

		err = s.companyRepo.UpdateInvite(ctx, c)
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < credentialRetries {
			continue
		}
		return nil, err
	}

	metrics.InviteRotationsTotal.Inc()
	s.logger.Info("invite link rotated", "company_id", c.ID().String(), "actor", actor.ID().String())

	return s.credentials(c), nil
}

// CompanyPreview is what an invite resolves to before joining.
type CompanyPreview struct {
	ID   shared.ID
	Name string
}

// ResolveInviteCode resolves a six-digit invite code to a company
// preview. Codes never expire.
func (s *CompanyService) ResolveInviteCode(ctx context.Context, code string) (*CompanyPreview, error) {
	c, err := s.companyRepo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			metrics.InviteResolutionsTotal.WithLabelValues("code", "invalid").Inc()
			return nil, company.ErrInviteInvalid
		}
		return nil, err
	}

	metrics.InviteResolutionsTotal.WithLabelValues("code", "ok").Inc()
	return &CompanyPreview{ID: c.ID(), Name: c.Name()}, nil
}

// ResolveInviteToken resolves an opaque invite token to a company
// preview. Expiry is evaluated lazily at resolve time.
func (s *CompanyService) ResolveInviteToken(ctx context.Context, token string) (*CompanyPreview, error) {
	c, err := s.companyRepo.GetByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			metrics.InviteResolutionsTotal.WithLabelValues("token", "invalid").Inc()
			return nil, company.ErrInviteInvalid
		}
		return nil, err
	}

	if c.InviteTokenExpired() {
		metrics.InviteResolutionsTotal.WithLabelValues("token", "expired").Inc()
		return nil, company.ErrInviteExpired
	}

	metrics.InviteResolutionsTotal.WithLabelValues("token", "ok").Inc()
	return &CompanyPreview{ID: c.ID(), Name: c.Name()}, nil
}

// ListMembers returns all members of the actor's company.
func (s *CompanyService) ListMembers(ctx context.Context, companyID string, actor *user.User) ([]*user.User, error) {
	parsedID, err := shared.IDFromString(companyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id format", shared.ErrValidation)
	}

	if !actor.MemberOf(parsedID) {
		return nil, shared.ErrForbidden
	}

	return s.userRepo.ListByCompany(ctx, parsedID)
}

func (s *CompanyService) credentials(c *company.Company) *InviteCredentials {
	return &InviteCredentials{
		Code:      c.InviteCode(),
		Token:     c.InviteToken(),
		Link:      company.BuildInviteLink(s.inviteBase, c.InviteToken()),
		ExpiresAt: c.InviteTokenExpiresAt(),
	}
}
