package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"renohub/internal/models"
	"renohub/internal/status"
)

// SubmitBid creates a contractor's priced offer. Bids are only accepted while
// the project's canonical status is Bidding and the contractor holds an
// active site visit application for the project; the application does not
// have to be completed yet. The one-live-bid-per-pair invariant is enforced
// by the store's uniqueness constraint.
func (s *Service) SubmitBid(ctx context.Context, projectId, contractorId string, price float64, description string, documentRef *string) (models.Bid, error) {
	if price <= 0 {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", models.ErrInvalidPrice)
	}

	project, visits, err := s.projectWithVisits(ctx, projectId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	if status.Canonical(project, visits) != models.ProjectBidding {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", models.ErrInvalidState)
	}

	eligible := false
	for _, v := range visits {
		if v.ContractorId == contractorId && v.Active() {
			eligible = true
			break
		}
	}
	if !eligible {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", models.ErrNotEligible)
	}

	bid, err := s.store.AddBid(ctx, models.Bid{
		Id:           uuid.NewString(),
		ProjectId:    projectId,
		ContractorId: contractorId,
		Price:        price,
		Description:  description,
		DocumentRef:  documentRef,
		Status:       models.BidSubmitted,
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	return bid, nil
}

// WithdrawBid deletes the contractor's live bid. Once the customer has
// selected a winner no bid on the project can be withdrawn, winning or
// losing, so the audit trail of the decision stays intact.
func (s *Service) WithdrawBid(ctx context.Context, bidId, contractorId string) error {
	bid, err := s.store.GetBidByUUID(ctx, bidId)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("service.Service.WithdrawBid: %w", models.ErrNoBid)
	} else if err != nil {
		return fmt.Errorf("service.Service.WithdrawBid: %w", err)
	}

	if bid.ContractorId != contractorId {
		return fmt.Errorf("service.Service.WithdrawBid: %w", models.ErrForbidden)
	}

	project, err := s.loadProject(ctx, bid.ProjectId)
	if err != nil {
		return fmt.Errorf("service.Service.WithdrawBid: %w", err)
	}

	if project.Selected() {
		return fmt.Errorf("service.Service.WithdrawBid: %w", models.ErrInvalidState)
	}

	err = s.store.DeleteBid(ctx, bidId)
	if err != nil {
		return fmt.Errorf("service.Service.WithdrawBid: %w", err)
	}
	return nil
}
