package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"renohub/internal/models"
	"renohub/internal/notify"
)

// SelectBid executes the customer's irreversible choice of a winning bid.
//
// Validation fails fast with no side effects; the transition itself is a
// single store transaction guarded on selected_bid_id still being NULL, so
// even racing calls from two browser tabs commit at most one selection. The
// call is deliberately not idempotent: a repeat, even with the same bid,
// fails with models.ErrAlreadySelected so the caller re-fetches truth instead
// of assuming re-application is safe.
func (s *Service) SelectBid(ctx context.Context, projectId, customerId, bidId string) (models.Project, error) {
	project, err := s.loadProject(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", err)
	}

	if project.CustomerId != customerId {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", models.ErrForbidden)
	}

	if project.Selected() {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", models.ErrAlreadySelected)
	}

	if models.TerminalStatus(project.Status) {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", models.ErrInvalidState)
	}

	bid, err := s.store.GetBidByUUID(ctx, bidId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", models.ErrNoBid)
	} else if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", err)
	}

	if bid.ProjectId != projectId || bid.Status != models.BidSubmitted {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", models.ErrNoBid)
	}

	rejected, err := s.store.SelectBid(ctx, projectId, bid.ContractorId, bidId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.SelectBid: %w", err)
	}

	project.SelectedContractorId = &bid.ContractorId
	project.SelectedBidId = &bid.Id
	project.Status = models.ProjectBiddingClosed
	bid.Status = models.BidAccepted

	s.emitSelected(ctx, project, bid, rejected)

	return project, nil
}

// emitSelected hands the committed outcome to the notifier. The selection is
// already the source of truth; a failed lookup or a slow notifier must not
// affect the caller, so payload loading is best effort and delivery runs in
// the background.
func (s *Service) emitSelected(ctx context.Context, project models.Project, bid models.Bid, rejected []string) {
	event := notify.SelectionEvent{
		Project:        project,
		WinningBid:     bid,
		RejectedBidIds: rejected,
	}

	contractor, err := s.store.ContractorByUUID(ctx, bid.ContractorId)
	if err != nil {
		log.Printf("service: selection event for project %s: contractor lookup failed: %s", project.Id, err)
	}
	event.WinningContractor = contractor

	customer, err := s.store.CustomerByUUID(ctx, project.CustomerId)
	if err != nil {
		log.Printf("service: selection event for project %s: customer lookup failed: %s", project.Id, err)
	}
	event.Customer = customer

	go s.notifier.OnSelected(context.WithoutCancel(ctx), event)
}
