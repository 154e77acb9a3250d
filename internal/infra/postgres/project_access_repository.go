package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sitecrew/api/pkg/domain/project"
	"github.com/sitecrew/api/pkg/domain/shared"
)

// ProjectAccessRepository implements project.AccessRepository using PostgreSQL.
type ProjectAccessRepository struct {
	db *DB
}

// NewProjectAccessRepository creates a new ProjectAccessRepository.
func NewProjectAccessRepository(db *DB) *ProjectAccessRepository {
	return &ProjectAccessRepository{db: db}
}

// Create persists a new access grant. The unique constraint on
// (project_id, user_id) rejects duplicate grants.
func (r *ProjectAccessRepository) Create(ctx context.Context, a *project.Access) error {
	query := `
		INSERT INTO project_access (id, project_id, user_id, role, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID().String(),
		a.ProjectID().String(),
		a.UserID().String(),
		a.Role().String(),
		a.AssignedBy().String(),
		a.AssignedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return project.ErrDuplicateGrant
		}
		return fmt.Errorf("failed to create access grant: %w", err)
	}

	return nil
}

// GetByID retrieves an access grant by ID.
func (r *ProjectAccessRepository) GetByID(ctx context.Context, id shared.ID) (*project.Access, error) {
	query := `
		SELECT id, project_id, user_id, role, assigned_by, assigned_at
		FROM project_access
		WHERE id = $1
	`

	return r.scanAccess(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByProjectAndUser retrieves the grant for a user on a project.
func (r *ProjectAccessRepository) GetByProjectAndUser(ctx context.Context, projectID, userID shared.ID) (*project.Access, error) {
	query := `
		SELECT id, project_id, user_id, role, assigned_by, assigned_at
		FROM project_access
		WHERE project_id = $1 AND user_id = $2
	`

	return r.scanAccess(r.db.QueryRowContext(ctx, query, projectID.String(), userID.String()))
}

// ListByProject returns all grants on a project joined with the grantee's
// identity, oldest first.
func (r *ProjectAccessRepository) ListByProject(ctx context.Context, projectID shared.ID) ([]*project.AccessWithUser, error) {
	query := `
		SELECT pa.id, pa.project_id, pa.user_id, u.name, u.email, pa.role, pa.assigned_by, pa.assigned_at
		FROM project_access pa
		JOIN users u ON u.id = pa.user_id
		WHERE pa.project_id = $1
		ORDER BY pa.assigned_at
	`

	rows, err := r.db.QueryContext(ctx, query, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list access grants: %w", err)
	}
	defer rows.Close()

	var grants []*project.AccessWithUser
	for rows.Next() {
		var (
			idStr, projectIDStr, userIDStr, userName, userEmail, roleStr, assignedByStr string
			assignedAt                                                                  time.Time
		)
		if err := rows.Scan(&idStr, &projectIDStr, &userIDStr, &userName, &userEmail, &roleStr, &assignedByStr, &assignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan access grant: %w", err)
		}

		id, _ := shared.IDFromString(idStr)
		pID, _ := shared.IDFromString(projectIDStr)
		userID, _ := shared.IDFromString(userIDStr)
		assignedBy, _ := shared.IDFromString(assignedByStr)
		role, _ := project.ParseRole(roleStr)

		grants = append(grants, &project.AccessWithUser{
			ID:         id,
			ProjectID:  pID,
			UserID:     userID,
			UserName:   userName,
			UserEmail:  userEmail,
			Role:       role,
			AssignedBy: assignedBy,
			AssignedAt: assignedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate access grants: %w", err)
	}

	return grants, nil
}

// Delete removes an access grant.
func (r *ProjectAccessRepository) Delete(ctx context.Context, id shared.ID) error {
	query := `DELETE FROM project_access WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete access grant: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

func (r *ProjectAccessRepository) scanAccess(row *sql.Row) (*project.Access, error) {
	var (
		idStr, projectIDStr, userIDStr, roleStr, assignedByStr string
		assignedAt                                             time.Time
	)

	err := row.Scan(&idStr, &projectIDStr, &userIDStr, &roleStr, &assignedByStr, &assignedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan access grant: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	projectID, _ := shared.IDFromString(projectIDStr)
	userID, _ := shared.IDFromString(userIDStr)
	assignedBy, _ := shared.IDFromString(assignedByStr)
	role, _ := project.ParseRole(roleStr)

	return project.ReconstituteAccess(id, projectID, userID, role, assignedBy, assignedAt), nil
}
