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

// CompanyRepository implements company.Repository using PostgreSQL.
type CompanyRepository struct {
	db *DB
}

// NewCompanyRepository creates a new CompanyRepository.
func NewCompanyRepository(db *DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// CreateWithFounder atomically inserts the company and binds the founding
// user to it. The founder update is guarded by company_id IS NULL so two
// concurrent creations by the same user cannot both succeed.
func (r *CompanyRepository) CreateWithFounder(ctx context.Context, c *company.Company, founderID shared.ID) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		insertQuery := `
			INSERT INTO companies (id, name, created_by, invite_code, invite_token, invite_token_expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		_, err := tx.ExecContext(ctx, insertQuery,
			c.ID().String(),
			c.Name(),
			c.CreatedBy().String(),
			c.InviteCode(),
			c.InviteToken(),
			nullTime(c.InviteTokenExpiresAt()),
			c.CreatedAt(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return fmt.Errorf("failed to create company: %w", err)
		}

		bindQuery := `
			UPDATE users
			SET company_id = $2, role = $3, status = $4
			WHERE id = $1 AND company_id IS NULL
		`

		result, err := tx.ExecContext(ctx, bindQuery,
			founderID.String(),
			c.ID().String(),
			company.RoleAdmin.String(),
			string(user.StatusActive),
		)
		if err != nil {
			return fmt.Errorf("failed to bind founder: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return user.ErrAlreadyMember
		}

		return nil
	})
}

// GetByID retrieves a company by ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id shared.ID) (*company.Company, error) {
	query := `
		SELECT id, name, created_by, invite_code, invite_token, invite_token_expires_at, created_at
		FROM companies
		WHERE id = $1
	`

	return r.scanCompany(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByInviteCode retrieves a company by its six-digit invite code.
func (r *CompanyRepository) GetByInviteCode(ctx context.Context, code string) (*company.Company, error) {
	query := `
		SELECT id, name, created_by, invite_code, invite_token, invite_token_expires_at, created_at
		FROM companies
		WHERE invite_code = $1
	`

	return r.scanCompany(r.db.QueryRowContext(ctx, query, code))
}

// GetByInviteToken retrieves a company by its opaque invite token.
func (r *CompanyRepository) GetByInviteToken(ctx context.Context, token string) (*company.Company, error) {
	query := `
		SELECT id, name, created_by, invite_code, invite_token, invite_token_expires_at, created_at
		FROM companies
		WHERE invite_token = $1
	`

	return r.scanCompany(r.db.QueryRowContext(ctx, query, token))
}

// ExistsByName checks if a company with the given name exists.
func (r *CompanyRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM companies WHERE name = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check name existence: %w", err)
	}

	return exists, nil
}

// UpdateInvite persists a rotated invite token and its expiry.
// Last writer wins between concurrent rotations.
func (r *CompanyRepository) UpdateInvite(ctx context.Context, c *company.Company) error {
	query := `
		UPDATE companies
		SET invite_token = $2, invite_token_expires_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID().String(),
		c.InviteToken(),
		nullTime(c.InviteTokenExpiresAt()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to update invite: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// List returns all companies ordered by creation time.
func (r *CompanyRepository) List(ctx context.Context) ([]*company.Company, error) {
	query := `
		SELECT id, name, created_by, invite_code, invite_token, invite_token_expires_at, created_at
		FROM companies
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []*company.Company
	for rows.Next() {
		c, err := r.scanCompanyRow(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return companies, nil
}

func (r *CompanyRepository) scanCompany(row *sql.Row) (*company.Company, error) {
	var (
		idStr, name, createdByStr, inviteCode, inviteToken string
		tokenExpiresAt                                     sql.NullTime
		createdAt                                          time.Time
	)

	err := row.Scan(&idStr, &name, &createdByStr, &inviteCode, &inviteToken, &tokenExpiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	createdBy, _ := shared.IDFromString(createdByStr)

	return company.Reconstitute(
		id, name, createdBy, inviteCode, inviteToken,
		nullTimeValue(tokenExpiresAt), createdAt,
	), nil
}

func (r *CompanyRepository) scanCompanyRow(rows *sql.Rows) (*company.Company, error) {
	var (
		idStr, name, createdByStr, inviteCode, inviteToken string
		tokenExpiresAt                                     sql.NullTime
		createdAt                                          time.Time
	)

	err := rows.Scan(&idStr, &name, &createdByStr, &inviteCode, &inviteToken, &tokenExpiresAt, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	createdBy, _ := shared.IDFromString(createdByStr)

	return company.Reconstitute(
		id, name, createdBy, inviteCode, inviteToken,
		nullTimeValue(tokenExpiresAt), createdAt,
	), nil
}
