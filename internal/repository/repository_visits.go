package repository

import (
	"context"
	"fmt"

	"renohub/internal/models"
)

// AddVisit inserts a new site visit application. The partial unique index on
// (project_id, contractor_id) WHERE NOT is_cancelled closes the race between
// two concurrent applies; the loser surfaces models.ErrDuplicateApplication.
func (repo *Repository) AddVisit(ctx context.Context, visit models.SiteVisitApplication) (models.SiteVisitApplication, error) {
	query := `
	INSERT INTO site_visit_applications (id, project_id, contractor_id, status, is_cancelled)
	VALUES ($1, $2, $3, $4, FALSE)
	RETURNING applied_at, updated_at
	`

	row := repo.db.QueryRowxContext(ctx, query,
		visit.Id, visit.ProjectId, visit.ContractorId, visit.Status)
	err := row.Scan(&visit.AppliedAt, &visit.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return visit, fmt.Errorf("repository.Repository.AddVisit: %w", models.ErrDuplicateApplication)
		}
		return visit, fmt.Errorf("repository.Repository.AddVisit: %w", err)
	}

	return visit, nil
}

func (repo *Repository) GetVisitByUUID(ctx context.Context, UUID string) (models.SiteVisitApplication, error) {
	var visit models.SiteVisitApplication
	query := `
	SELECT id, project_id, contractor_id, status, is_cancelled, applied_at, updated_at
	FROM site_visit_applications
	WHERE id = $1
	`

	err := repo.db.GetContext(ctx, &visit, query, UUID)
	if err != nil {
		return visit, fmt.Errorf("repository.Repository.GetVisitByUUID: %w", err)
	}
	return visit, nil
}

func (repo *Repository) GetProjectVisits(ctx context.Context, projectId string) ([]models.SiteVisitApplication, error) {
	query := `
	SELECT id, project_id, contractor_id, status, is_cancelled, applied_at, updated_at
	FROM site_visit_applications
	WHERE project_id = $1
	ORDER BY applied_at
	`

	visits := []models.SiteVisitApplication{}
	err := repo.db.SelectContext(ctx, &visits, query, projectId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetProjectVisits: %w", err)
	}
	return visits, nil
}

// CancelVisit soft-deletes an application. Applying it to an already
// cancelled row is a no-op, which keeps cancellation idempotent.
func (repo *Repository) CancelVisit(ctx context.Context, UUID string) error {
	query := `
	UPDATE site_visit_applications
	SET (is_cancelled, updated_at) = (TRUE, CURRENT_TIMESTAMP)
	WHERE id = $1 AND NOT is_cancelled
	`

	_, err := repo.db.ExecContext(ctx, query, UUID)
	if err != nil {
		return fmt.Errorf("repository.Repository.CancelVisit: %w", err)
	}
	return nil
}

func (repo *Repository) SetVisitStatus(ctx context.Context, UUID string, status models.VisitStatus) error {
	query := `
	UPDATE site_visit_applications
	SET (status, updated_at) = ($1, CURRENT_TIMESTAMP)
	WHERE id = $2
	`

	_, err := repo.db.ExecContext(ctx, query, status, UUID)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetVisitStatus: %w", err)
	}
	return nil
}
