package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"renohub/internal/models"
	"renohub/internal/notify"
)

// ApplyForVisit files a site visit application for a contractor. Visits only
// make sense once the customer's project has been approved, so pending and
// cancelled projects reject the request. The duplicate-application race is
// closed by the store's uniqueness constraint, not checked here.
func (s *Service) ApplyForVisit(ctx context.Context, projectId, contractorId string) (models.SiteVisitApplication, error) {
	project, err := s.loadProject(ctx, projectId)
	if err != nil {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.ApplyForVisit: %w", err)
	}

	if project.Status == models.ProjectPending || project.Status == models.ProjectCancelled {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.ApplyForVisit: %w", models.ErrInvalidState)
	}

	contractor, err := s.store.ContractorByUUID(ctx, contractorId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.ApplyForVisit: %w", models.ErrInvalidParty)
	} else if err != nil {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.ApplyForVisit: %w", err)
	}

	visit, err := s.store.AddVisit(ctx, models.SiteVisitApplication{
		Id:           uuid.NewString(),
		ProjectId:    projectId,
		ContractorId: contractorId,
		Status:       models.VisitPending,
	})
	if err != nil {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.ApplyForVisit: %w", err)
	}

	// notification is best effort and independent of the committed write
	go s.notifier.OnSiteVisitApplied(context.WithoutCancel(ctx), notify.VisitEvent{
		Project:     project,
		Contractor:  contractor,
		Application: visit,
	})

	return visit, nil
}

// CancelVisit soft-deletes the contractor's application. Cancelling an
// already cancelled application succeeds without touching anything, so the UI
// can always retry it.
func (s *Service) CancelVisit(ctx context.Context, applicationId, contractorId string) error {
	visit, err := s.loadVisit(ctx, applicationId)
	if err != nil {
		return fmt.Errorf("service.Service.CancelVisit: %w", err)
	}

	if visit.ContractorId != contractorId {
		return fmt.Errorf("service.Service.CancelVisit: %w", models.ErrForbidden)
	}

	if visit.IsCancelled {
		return nil
	}

	err = s.store.CancelVisit(ctx, applicationId)
	if err != nil {
		return fmt.Errorf("service.Service.CancelVisit: %w", err)
	}
	return nil
}

// CompleteVisit is the operational action recording that the visit took
// place. Cancelled applications cannot be completed.
func (s *Service) CompleteVisit(ctx context.Context, applicationId string) (models.SiteVisitApplication, error) {
	visit, err := s.loadVisit(ctx, applicationId)
	if err != nil {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.CompleteVisit: %w", err)
	}

	if visit.IsCancelled {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.CompleteVisit: %w", models.ErrInvalidState)
	}

	if visit.Status == models.VisitCompleted {
		return visit, nil
	}

	err = s.store.SetVisitStatus(ctx, applicationId, models.VisitCompleted)
	if err != nil {
		return models.SiteVisitApplication{}, fmt.Errorf("service.Service.CompleteVisit: %w", err)
	}

	visit.Status = models.VisitCompleted
	return visit, nil
}

func (s *Service) loadVisit(ctx context.Context, applicationId string) (models.SiteVisitApplication, error) {
	visit, err := s.store.GetVisitByUUID(ctx, applicationId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SiteVisitApplication{}, models.ErrNoApplication
	} else if err != nil {
		return models.SiteVisitApplication{}, err
	}
	return visit, nil
}
