package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"renohub/internal/models"
)

// AddBid inserts a live bid. The insert only lands while the project row
// still says Bidding, so a bid validated just before bidding closed cannot
// slip in after the close; that near miss surfaces models.ErrInvalidState.
func (repo *Repository) AddBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	query := `
	INSERT INTO bids (id, project_id, contractor_id, price, description, document_ref, status)
	SELECT $1, $2, $3, $4, $5, $6, $7
	WHERE EXISTS (SELECT 1 FROM projects WHERE id = $2 AND status = $8)
	RETURNING created_at, updated_at
	`

	row := repo.db.QueryRowxContext(ctx, query,
		bid.Id, bid.ProjectId, bid.ContractorId, bid.Price, bid.Description, bid.DocumentRef, bid.Status,
		models.ProjectBidding)
	err := row.Scan(&bid.CreatedAt, &bid.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return bid, fmt.Errorf("repository.Repository.AddBid: %w", models.ErrDuplicateBid)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return bid, fmt.Errorf("repository.Repository.AddBid: %w", models.ErrInvalidState)
		}
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", err)
	}

	return bid, nil
}

func (repo *Repository) GetBidByUUID(ctx context.Context, UUID string) (models.Bid, error) {
	var bid models.Bid
	query := `
	SELECT id, project_id, contractor_id, price, description, document_ref, status, created_at, updated_at
	FROM bids
	WHERE id = $1
	`

	err := repo.db.GetContext(ctx, &bid, query, UUID)
	if err != nil {
		return bid, fmt.Errorf("repository.Repository.GetBidByUUID: %w", err)
	}
	return bid, nil
}

func (repo *Repository) GetProjectBids(ctx context.Context, projectId string) ([]models.Bid, error) {
	query := `
	SELECT id, project_id, contractor_id, price, description, document_ref, status, created_at, updated_at
	FROM bids
	WHERE project_id = $1
	ORDER BY created_at
	`

	bids := []models.Bid{}
	err := repo.db.SelectContext(ctx, &bids, query, projectId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetProjectBids: %w", err)
	}
	return bids, nil
}

// DeleteBid removes a live bid (withdrawal). Accepted and rejected bids are
// audit history of the selection and stay put: the delete is conditioned on
// the bid still being Submitted, so a withdraw racing a selection cannot
// erase an already decided bid. A miss on a decided bid surfaces
// models.ErrInvalidState, on a vanished bid models.ErrNoBid.
func (repo *Repository) DeleteBid(ctx context.Context, UUID string) error {
	res, err := repo.db.ExecContext(ctx,
		"DELETE FROM bids WHERE id = $1 AND status = $2", UUID, models.BidSubmitted)
	if err != nil {
		return fmt.Errorf("repository.Repository.DeleteBid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.Repository.DeleteBid: %w", err)
	}
	if n == 0 {
		var status models.BidStatus
		err = repo.db.GetContext(ctx, &status, "SELECT status FROM bids WHERE id = $1", UUID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("repository.Repository.DeleteBid: %w", models.ErrNoBid)
		} else if err != nil {
			return fmt.Errorf("repository.Repository.DeleteBid: %w", err)
		}
		return fmt.Errorf("repository.Repository.DeleteBid: %w", models.ErrInvalidState)
	}

	return nil
}
