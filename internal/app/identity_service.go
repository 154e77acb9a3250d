package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
	"github.com/sitecrew/api/pkg/jwt"
	"github.com/sitecrew/api/pkg/logger"
)

// IdentityService creates principals and issues session tokens.
// Credential verification lives outside this module; a session token
// carries only the user id, everything else is loaded per request.
type IdentityService struct {
	userRepo user.Repository
	tokens   *jwt.Generator
	logger   *logger.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(userRepo user.Repository, tokens *jwt.Generator, log *logger.Logger) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   log.With("service", "identity"),
	}
}

// RegisterInput represents the input for registering a user.
type RegisterInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// Session is an issued session token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register creates an unaffiliated user and issues a session token.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*user.User, *Session, error) {
	u, err := user.New(input.Name, input.Email)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("%w: email already registered", shared.ErrConflict)
		}
		return nil, nil, err
	}

	session, err := s.issueSession(u)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID().String())
	return u, session, nil
}

// IssueSession issues a session token for an existing user.
func (s *IdentityService) IssueSession(ctx context.Context, userID shared.ID) (*Session, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issueSession(u)
}

// GetProfile returns the principal's own record.
func (s *IdentityService) GetProfile(ctx context.Context, userID shared.ID) (*user.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *IdentityService) issueSession(u *user.User) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateSessionToken(u.ID().String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}
