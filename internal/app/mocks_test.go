package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/joinrequest"
	"github.com/sitecrew/api/pkg/domain/project"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type mockUserRepo struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*user.User)}
}

func (m *mockUserRepo) add(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID().String()] = u
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email() == u.Email() {
			return shared.ErrAlreadyExists
		}
	}
	m.users[u.ID().String()] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id shared.ID) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id.String()]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockUserRepo) ListByCompany(_ context.Context, companyID shared.ID) ([]*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var members []*user.User
	for _, u := range m.users {
		if u.MemberOf(companyID) {
			members = append(members, u)
		}
	}
	return members, nil
}

type mockCompanyRepo struct {
	mu        sync.RWMutex
	companies map[string]*company.Company
	users     *mockUserRepo

	createErr     error
	createErrOnce bool
	updateErr     error
	updateErrOnce bool
}

func newMockCompanyRepo(users *mockUserRepo) *mockCompanyRepo {
	return &mockCompanyRepo{
		companies: make(map[string]*company.Company),
		users:     users,
	}
}

func (m *mockCompanyRepo) add(c *company.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID().String()] = c
}

func (m *mockCompanyRepo) CreateWithFounder(_ context.Context, c *company.Company, founderID shared.ID) error {
	if m.createErr != nil {
		err := m.createErr
		if m.createErrOnce {
			m.createErr = nil
		}
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.companies {
		if existing.Name() == c.Name() || existing.InviteCode() == c.InviteCode() || existing.InviteToken() == c.InviteToken() {
			return shared.ErrAlreadyExists
		}
	}

	founder, ok := m.users.users[founderID.String()]
	if !ok {
		return shared.ErrNotFound
	}
	if err := founder.BindToCompany(c.ID(), company.RoleAdmin); err != nil {
		return err
	}

	m.companies[c.ID().String()] = c
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id shared.ID) (*company.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.companies[id.String()]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockCompanyRepo) GetByInviteCode(_ context.Context, code string) (*company.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.companies {
		if c.InviteCode() == code {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockCompanyRepo) GetByInviteToken(_ context.Context, token string) (*company.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.companies {
		if c.InviteToken() == token {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockCompanyRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.companies {
		if c.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCompanyRepo) UpdateInvite(_ context.Context, c *company.Company) error {
	if m.updateErr != nil {
		err := m.updateErr
		if m.updateErrOnce {
			m.updateErr = nil
		}
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[c.ID().String()]; !ok {
		return shared.ErrNotFound
	}
	m.companies[c.ID().String()] = c
	return nil
}

func (m *mockCompanyRepo) List(_ context.Context) ([]*company.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*company.Company
	for _, c := range m.companies {
		out = append(out, c)
	}
	return out, nil
}

type mockJoinRequestRepo struct {
	mu       sync.RWMutex
	requests map[string]*joinrequest.JoinRequest
	users    *mockUserRepo

	createErr error
}

func newMockJoinRequestRepo(users *mockUserRepo) *mockJoinRequestRepo {
	return &mockJoinRequestRepo{
		requests: make(map[string]*joinrequest.JoinRequest),
		users:    users,
	}
}

// copyRequest detaches a stored row from the caller's entity so that
// in-memory mutations don't reach "persistence" before a write call,
// the way a real row wouldn't.
func copyRequest(jr *joinrequest.JoinRequest) *joinrequest.JoinRequest {
	return joinrequest.Reconstitute(
		jr.ID(), jr.UserID(), jr.CompanyID(),
		jr.Status(), jr.RequestedAt(),
		jr.DecidedAt(), jr.DecidedBy(), jr.AssignedRole(),
	)
}

func (m *mockJoinRequestRepo) Create(_ context.Context, jr *joinrequest.JoinRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.requests {
		if existing.IsPending() &&
			existing.UserID().Equals(jr.UserID()) &&
			existing.CompanyID().Equals(jr.CompanyID()) {
			return joinrequest.ErrDuplicateRequest
		}
	}
	m.requests[jr.ID().String()] = copyRequest(jr)
	return nil
}

func (m *mockJoinRequestRepo) GetByID(_ context.Context, id shared.ID) (*joinrequest.JoinRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if jr, ok := m.requests[id.String()]; ok {
		return copyRequest(jr), nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockJoinRequestRepo) ListPendingByCompany(_ context.Context, companyID shared.ID) ([]*joinrequest.PendingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*joinrequest.PendingRequest
	for _, jr := range m.requests {
		if !jr.IsPending() || !jr.CompanyID().Equals(companyID) {
			continue
		}
		u := m.users.users[jr.UserID().String()]
		out = append(out, &joinrequest.PendingRequest{
			ID:          jr.ID(),
			UserID:      jr.UserID(),
			UserName:    u.Name(),
			UserEmail:   u.Email(),
			CompanyID:   jr.CompanyID(),
			RequestedAt: jr.RequestedAt(),
		})
	}
	return out, nil
}

// ApproveTx mirrors the storage guards: the request row must still be
// pending and the user must still be unaffiliated, or nothing happens.
func (m *mockJoinRequestRepo) ApproveTx(_ context.Context, jr *joinrequest.JoinRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.requests[jr.ID().String()]
	if !ok {
		return shared.ErrNotFound
	}
	if !stored.IsPending() {
		return joinrequest.ErrAlreadyDecided
	}

	u, ok := m.users.users[jr.UserID().String()]
	if !ok {
		return shared.ErrNotFound
	}
	if u.IsMember() {
		return user.ErrAlreadyMember
	}

	if err := u.BindToCompany(jr.CompanyID(), *jr.AssignedRole()); err != nil {
		return err
	}
	m.requests[jr.ID().String()] = copyRequest(jr)
	return nil
}

func (m *mockJoinRequestRepo) UpdateDecision(_ context.Context, jr *joinrequest.JoinRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.requests[jr.ID().String()]
	if !ok {
		return shared.ErrNotFound
	}
	if !stored.IsPending() {
		return joinrequest.ErrAlreadyDecided
	}
	m.requests[jr.ID().String()] = copyRequest(jr)
	return nil
}

type mockProjectRepo struct {
	mu       sync.RWMutex
	projects map[string]*project.Project
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*project.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID().String()] = p
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id shared.ID) (*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.projects[id.String()]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockProjectRepo) ListByCompany(_ context.Context, companyID shared.ID) ([]*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*project.Project
	for _, p := range m.projects {
		if p.CompanyID().Equals(companyID) {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAccessRepo struct {
	mu     sync.RWMutex
	grants map[string]*project.Access
	users  *mockUserRepo
}

func newMockAccessRepo(users *mockUserRepo) *mockAccessRepo {
	return &mockAccessRepo{
		grants: make(map[string]*project.Access),
		users:  users,
	}
}

func (m *mockAccessRepo) Create(_ context.Context, a *project.Access) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.grants {
		if existing.ProjectID().Equals(a.ProjectID()) && existing.UserID().Equals(a.UserID()) {
			return project.ErrDuplicateGrant
		}
	}
	m.grants[a.ID().String()] = a
	return nil
}

func (m *mockAccessRepo) GetByID(_ context.Context, id shared.ID) (*project.Access, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.grants[id.String()]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockAccessRepo) GetByProjectAndUser(_ context.Context, projectID, userID shared.ID) (*project.Access, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.grants {
		if a.ProjectID().Equals(projectID) && a.UserID().Equals(userID) {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockAccessRepo) ListByProject(_ context.Context, projectID shared.ID) ([]*project.AccessWithUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*project.AccessWithUser
	for _, a := range m.grants {
		if !a.ProjectID().Equals(projectID) {
			continue
		}
		u := m.users.users[a.UserID().String()]
		out = append(out, &project.AccessWithUser{
			ID:         a.ID(),
			ProjectID:  a.ProjectID(),
			UserID:     a.UserID(),
			UserName:   u.Name(),
			UserEmail:  u.Email(),
			Role:       a.Role(),
			AssignedBy: a.AssignedBy(),
			AssignedAt: a.AssignedAt(),
		})
	}
	return out, nil
}

func (m *mockAccessRepo) Delete(_ context.Context, id shared.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.grants[id.String()]; !ok {
		return shared.ErrNotFound
	}
	delete(m.grants, id.String())
	return nil
}

// =============================================================================
// Fixtures
// =============================================================================

var fixtureSeq int

func fixtureUser() *user.User {
	fixtureSeq++
	u, err := user.New(fmt.Sprintf("User %d", fixtureSeq), fmt.Sprintf("user%d@example.com", fixtureSeq))
	if err != nil {
		panic(err)
	}
	return u
}

func fixtureMember(companyID shared.ID, role company.Role) *user.User {
	fixtureSeq++
	return user.Reconstitute(
		shared.NewID(),
		fmt.Sprintf("User %d", fixtureSeq),
		fmt.Sprintf("user%d@example.com", fixtureSeq),
		&companyID,
		user.StatusActive,
		role,
		time.Now().UTC(),
	)
}

func fixtureCompany(name string) *company.Company {
	c, err := company.New(name, shared.NewID())
	if err != nil {
		panic(err)
	}
	return c
}
