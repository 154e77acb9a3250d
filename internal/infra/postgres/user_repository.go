package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
)

// UserRepository implements user.Repository using PostgreSQL.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, name, email, company_id, status, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID().String(),
		u.Name(),
		u.Email(),
		nullID(u.CompanyID()),
		string(u.Status()),
		u.Role().String(),
		u.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id shared.ID) (*user.User, error) {
	query := `
		SELECT id, name, email, company_id, status, role, created_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, name, email, company_id, status, role, created_at
		FROM users
		WHERE email = $1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// ListByCompany returns all members of a company ordered by creation time.
func (r *UserRepository) ListByCompany(ctx context.Context, companyID shared.ID) ([]*user.User, error) {
	query := `
		SELECT id, name, email, company_id, status, role, created_at
		FROM users
		WHERE company_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, companyID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*user.User, error) {
	var (
		idStr, name, email, statusStr, roleStr string
		companyIDStr                           sql.NullString
		createdAt                              time.Time
	)

	err := row.Scan(&idStr, &name, &email, &companyIDStr, &statusStr, &roleStr, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return r.buildUser(idStr, name, email, companyIDStr, statusStr, roleStr, createdAt), nil
}

func (r *UserRepository) scanUserRow(rows *sql.Rows) (*user.User, error) {
	var (
		idStr, name, email, statusStr, roleStr string
		companyIDStr                           sql.NullString
		createdAt                              time.Time
	)

	err := rows.Scan(&idStr, &name, &email, &companyIDStr, &statusStr, &roleStr, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return r.buildUser(idStr, name, email, companyIDStr, statusStr, roleStr, createdAt), nil
}

func (r *UserRepository) buildUser(idStr, name, email string, companyIDStr sql.NullString, statusStr, roleStr string, createdAt time.Time) *user.User {
	id, _ := shared.IDFromString(idStr)
	role, _ := company.ParseRole(roleStr)

	return user.Reconstitute(
		id, name, email,
		parseNullID(companyIDStr),
		user.MembershipStatus(statusStr),
		role,
		createdAt,
	)
}
