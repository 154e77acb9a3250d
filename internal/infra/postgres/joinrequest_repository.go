package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/company"
	"github.com/sitecrew/api/pkg/domain/joinrequest"
	"github.com/sitecrew/api/pkg/domain/shared"
	"github.com/sitecrew/api/pkg/domain/user"
)

// JoinRequestRepository implements joinrequest.Repository using PostgreSQL.
type JoinRequestRepository struct {
	db *DB
}

// NewJoinRequestRepository creates a new JoinRequestRepository.
func NewJoinRequestRepository(db *DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// Create persists a new join request. The partial unique index on
// (user_id, company_id) WHERE status='pending' rejects duplicates.
func (r *JoinRequestRepository) Create(ctx context.Context, jr *joinrequest.JoinRequest) error {
	query := `
		INSERT INTO join_requests (id, user_id, company_id, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		jr.ID().String(),
		jr.UserID().String(),
		jr.CompanyID().String(),
		string(jr.Status()),
		jr.RequestedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return joinrequest.ErrDuplicateRequest
		}
		return fmt.Errorf("failed to create join request: %w", err)
	}

	return nil
}

// GetByID retrieves a join request by ID.
func (r *JoinRequestRepository) GetByID(ctx context.Context, id shared.ID) (*joinrequest.JoinRequest, error) {
	query := `
		SELECT id, user_id, company_id, status, requested_at, decided_at, decided_by, assigned_role
		FROM join_requests
		WHERE id = $1
	`

	return r.scanRequest(r.db.QueryRowContext(ctx, query, id.String()))
}

// ListPendingByCompany returns pending requests for a company joined with
// the requesting user's identity, oldest first.
func (r *JoinRequestRepository) ListPendingByCompany(ctx context.Context, companyID shared.ID) ([]*joinrequest.PendingRequest, error) {
	query := `
		SELECT jr.id, jr.user_id, u.name, u.email, jr.company_id, jr.requested_at
		FROM join_requests jr
		JOIN users u ON u.id = jr.user_id
		WHERE jr.company_id = $1 AND jr.status = 'pending'
		ORDER BY jr.requested_at
	`

	rows, err := r.db.QueryContext(ctx, query, companyID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var pending []*joinrequest.PendingRequest
	for rows.Next() {
		var (
			idStr, userIDStr, userName, userEmail, companyIDStr string
			requestedAt                                         time.Time
		)
		if err := rows.Scan(&idStr, &userIDStr, &userName, &userEmail, &companyIDStr, &requestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}

		id, _ := shared.IDFromString(idStr)
		userID, _ := shared.IDFromString(userIDStr)
		cID, _ := shared.IDFromString(companyIDStr)

		pending = append(pending, &joinrequest.PendingRequest{
			ID:          id,
			UserID:      userID,
			UserName:    userName,
			UserEmail:   userEmail,
			CompanyID:   cID,
			RequestedAt: requestedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending requests: %w", err)
	}

	return pending, nil
}

// ApproveTx atomically persists the approval and binds the user to
// the company. Both updates carry guards so a request decided
// concurrently, or a user who joined another company in the meantime,
// aborts the whole transaction.
func (r *JoinRequestRepository) ApproveTx(ctx context.Context, jr *joinrequest.JoinRequest) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		decisionQuery := `
			UPDATE join_requests
			SET status = $2, decided_at = $3, decided_by = $4, assigned_role = $5
			WHERE id = $1 AND status = 'pending'
		`

		var assignedRole sql.NullString
		if jr.AssignedRole() != nil {
			assignedRole = sql.NullString{String: jr.AssignedRole().String(), Valid: true}
		}

		result, err := tx.ExecContext(ctx, decisionQuery,
			jr.ID().String(),
			string(jr.Status()),
			nullTime(jr.DecidedAt()),
			nullID(jr.DecidedBy()),
			assignedRole,
		)
		if err != nil {
			return fmt.Errorf("failed to update join request: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return joinrequest.ErrAlreadyDecided
		}

		bindQuery := `
			UPDATE users
			SET company_id = $2, role = $3, status = $4
			WHERE id = $1 AND company_id IS NULL
		`

		result, err = tx.ExecContext(ctx, bindQuery,
			jr.UserID().String(),
			jr.CompanyID().String(),
			assignedRole.String,
			string(user.StatusActive),
		)
		if err != nil {
			return fmt.Errorf("failed to bind user: %w", err)
		}

		rows, _ = result.RowsAffected()
		if rows == 0 {
			return user.ErrAlreadyMember
		}

		return nil
	})
}

// UpdateDecision persists a rejection, guarded by status='pending'.
// The user row is untouched.
func (r *JoinRequestRepository) UpdateDecision(ctx context.Context, jr *joinrequest.JoinRequest) error {
	query := `
		UPDATE join_requests
		SET status = $2, decided_at = $3, decided_by = $4
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query,
		jr.ID().String(),
		string(jr.Status()),
		nullTime(jr.DecidedAt()),
		nullID(jr.DecidedBy()),
	)
	if err != nil {
		return fmt.Errorf("failed to update join request: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return joinrequest.ErrAlreadyDecided
	}

	return nil
}

func (r *JoinRequestRepository) scanRequest(row *sql.Row) (*joinrequest.JoinRequest, error) {
	var (
		idStr, userIDStr, companyIDStr, statusStr string
		requestedAt                               time.Time
		decidedAt                                 sql.NullTime
		decidedByStr, assignedRoleStr             sql.NullString
	)

	err := row.Scan(&idStr, &userIDStr, &companyIDStr, &statusStr, &requestedAt, &decidedAt, &decidedByStr, &assignedRoleStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan join request: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	userID, _ := shared.IDFromString(userIDStr)
	companyID, _ := shared.IDFromString(companyIDStr)

	var assignedRole *company.Role
	if assignedRoleStr.Valid {
		if role, ok := company.ParseRole(assignedRoleStr.String); ok {
			assignedRole = &role
		}
	}

	return joinrequest.Reconstitute(
		id, userID, companyID,
		joinrequest.Status(statusStr),
		requestedAt,
		nullTimeValue(decidedAt),
		parseNullID(decidedByStr),
		assignedRole,
	), nil
}
