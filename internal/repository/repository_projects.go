package repository

import (
	"context"
	"fmt"

	"renohub/internal/models"
)

func (repo *Repository) AddProject(ctx context.Context, project models.Project) (models.Project, error) {
	query := `
	INSERT INTO projects (id, customer_id, title, description, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`

	row := repo.db.QueryRowxContext(ctx, query,
		project.Id, project.CustomerId, project.Title, project.Description, project.Status)
	err := row.Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return project, fmt.Errorf("repository.Repository.AddProject: %w", err)
	}

	return project, nil
}

func (repo *Repository) GetProjectByUUID(ctx context.Context, UUID string) (models.Project, error) {
	var project models.Project
	query := `
	SELECT id, customer_id, title, description, status, selected_contractor_id, selected_bid_id, created_at, updated_at
	FROM projects
	WHERE id = $1
	`

	err := repo.db.GetContext(ctx, &project, query, UUID)
	if err != nil {
		return project, fmt.Errorf("repository.Repository.GetProjectByUUID: %w", err)
	}
	return project, nil
}

func (repo *Repository) GetProjects(ctx context.Context, limit, offset int, customerId string) ([]models.Project, error) {
	query := `
	SELECT id, customer_id, title, description, status, selected_contractor_id, selected_bid_id, created_at, updated_at
	FROM projects
	WHERE ($3 = '' OR customer_id = $3::uuid)
	ORDER BY created_at DESC
	LIMIT $1
	OFFSET $2
	`

	var capped interface{}
	if limit > 0 {
		capped = limit
	}

	projects := []models.Project{}
	err := repo.db.SelectContext(ctx, &projects, query, capped, offset, customerId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetProjects: %w", err)
	}
	return projects, nil
}

func (repo *Repository) UpdateProjectStatus(ctx context.Context, UUID string, status models.ProjectStatus) error {
	query := `
	UPDATE projects
	SET (status, updated_at) = ($1, CURRENT_TIMESTAMP)
	WHERE id = $2
	`

	_, err := repo.db.ExecContext(ctx, query, status, UUID)
	if err != nil {
		return fmt.Errorf("repository.Repository.UpdateProjectStatus: %w", err)
	}
	return nil
}

// SelectBid performs the exactly-once selection transition in one
// transaction: the project's selection fields and status, the winning bid's
// acceptance and every other bid's rejection either all land or none do.
//
// The project update only applies while selected_bid_id is still NULL and
// the project is not terminal, so of two racing calls exactly one commits;
// the loser observes models.ErrAlreadySelected (or models.ErrInvalidState
// when a cancellation won the race) and no state change.
func (repo *Repository) SelectBid(ctx context.Context, projectId, contractorId, bidId string) (rejected []string, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: failed to start transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
	UPDATE projects
	SET (selected_contractor_id, selected_bid_id, status, updated_at) = ($1, $2, $3, CURRENT_TIMESTAMP)
	WHERE id = $4 AND selected_bid_id IS NULL AND status NOT IN ($5, $6)
	`, contractorId, bidId, models.ProjectBiddingClosed, projectId,
		models.ProjectCancelled, models.ProjectCompleted)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}
	if n == 0 {
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, repo.selectBidMiss(ctx, projectId)))
	}

	res, err = tx.ExecContext(ctx, `
	UPDATE bids
	SET (status, updated_at) = ($1, CURRENT_TIMESTAMP)
	WHERE id = $2 AND project_id = $3 AND status = $4
	`, models.BidAccepted, bidId, projectId, models.BidSubmitted)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}

	n, err = res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}
	if n == 0 {
		// bid withdrawn between validation and commit
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, models.ErrNoBid))
	}

	rows, err := tx.QueryContext(ctx, `
	UPDATE bids
	SET (status, updated_at) = ($1, CURRENT_TIMESTAMP)
	WHERE project_id = $2 AND id <> $3
	RETURNING id
	`, models.BidRejected, projectId, bidId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}

	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("repository.Repository.SelectBid: rows scan error: %w", wrapRollbackErr(tx, err))
		}
		rejected = append(rejected, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}
	rows.Close()

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SelectBid: failed to commit transaction: %w", err)
	}

	return rejected, nil
}

// selectBidMiss explains why the guarded project update matched no row: an
// existing selection, a terminal project, or no project at all.
func (repo *Repository) selectBidMiss(ctx context.Context, projectId string) error {
	var selectedBidId *string
	err := repo.db.GetContext(ctx, &selectedBidId,
		"SELECT selected_bid_id FROM projects WHERE id = $1", projectId)
	if err != nil {
		return err
	}

	if selectedBidId != nil {
		return models.ErrAlreadySelected
	}
	return models.ErrInvalidState
}
