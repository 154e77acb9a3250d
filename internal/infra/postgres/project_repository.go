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

// ProjectRepository implements project.Repository using PostgreSQL.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create persists a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (id, company_id, name, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID().String(),
		p.CompanyID().String(),
		p.Name(),
		p.CreatedBy().String(),
		p.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id shared.ID) (*project.Project, error) {
	query := `
		SELECT id, company_id, name, created_by, created_at
		FROM projects
		WHERE id = $1
	`

	var (
		idStr, companyIDStr, name, createdByStr string
		createdAt                               time.Time
	)

	err := r.db.QueryRowContext(ctx, query, id.String()).
		Scan(&idStr, &companyIDStr, &name, &createdByStr, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	pID, _ := shared.IDFromString(idStr)
	companyID, _ := shared.IDFromString(companyIDStr)
	createdBy, _ := shared.IDFromString(createdByStr)

	return project.Reconstitute(pID, companyID, name, createdBy, createdAt), nil
}

// ListByCompany returns all projects of a company ordered by creation time.
func (r *ProjectRepository) ListByCompany(ctx context.Context, companyID shared.ID) ([]*project.Project, error) {
	query := `
		SELECT id, company_id, name, created_by, created_at
		FROM projects
		WHERE company_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, companyID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		var (
			idStr, cIDStr, name, createdByStr string
			createdAt                         time.Time
		)
		if err := rows.Scan(&idStr, &cIDStr, &name, &createdByStr, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		pID, _ := shared.IDFromString(idStr)
		cID, _ := shared.IDFromString(cIDStr)
		createdBy, _ := shared.IDFromString(createdByStr)

		projects = append(projects, project.Reconstitute(pID, cID, name, createdBy, createdAt))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}
