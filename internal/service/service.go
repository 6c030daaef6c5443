package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"renohub/internal/models"
	"renohub/internal/notify"
	"renohub/internal/status"
)

// Storage is the entity store contract the coordinators run against. It is
// implemented by *repository.Repository; tests substitute an in-memory fake.
type Storage interface {
	AddProject(ctx context.Context, project models.Project) (models.Project, error)
	GetProjectByUUID(ctx context.Context, UUID string) (models.Project, error)
	GetProjects(ctx context.Context, limit, offset int, customerId string) ([]models.Project, error)
	UpdateProjectStatus(ctx context.Context, UUID string, status models.ProjectStatus) error
	SelectBid(ctx context.Context, projectId, contractorId, bidId string) (rejected []string, err error)

	AddVisit(ctx context.Context, visit models.SiteVisitApplication) (models.SiteVisitApplication, error)
	GetVisitByUUID(ctx context.Context, UUID string) (models.SiteVisitApplication, error)
	GetProjectVisits(ctx context.Context, projectId string) ([]models.SiteVisitApplication, error)
	CancelVisit(ctx context.Context, UUID string) error
	SetVisitStatus(ctx context.Context, UUID string, status models.VisitStatus) error

	AddBid(ctx context.Context, bid models.Bid) (models.Bid, error)
	GetBidByUUID(ctx context.Context, UUID string) (models.Bid, error)
	GetProjectBids(ctx context.Context, projectId string) ([]models.Bid, error)
	DeleteBid(ctx context.Context, UUID string) error

	CustomerByUUID(ctx context.Context, UUID string) (models.Customer, error)
	ContractorByUUID(ctx context.Context, UUID string) (models.Contractor, error)
}

type Service struct {
	store    Storage
	notifier notify.Notifier
}

func NewService(store Storage, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Service{store: store, notifier: notifier}
}

//// Projects

func (s *Service) CreateProject(ctx context.Context, customerId, title, description string) (models.Project, error) {
	_, err := s.store.CustomerByUUID(ctx, customerId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("service.Service.CreateProject: %w", models.ErrInvalidParty)
	} else if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.CreateProject: %w", err)
	}

	project, err := s.store.AddProject(ctx, models.Project{
		Id:          uuid.NewString(),
		CustomerId:  customerId,
		Title:       title,
		Description: description,
		Status:      models.ProjectPending,
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.CreateProject: %w", err)
	}

	return project, nil
}

// GetProject returns the project with its canonical status derived from the
// current record set, not the raw stored column.
func (s *Service) GetProject(ctx context.Context, projectId string) (models.Project, error) {
	project, visits, err := s.projectWithVisits(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.GetProject: %w", err)
	}

	project.Status = status.Canonical(project, visits)
	return project, nil
}

func (s *Service) GetProjects(ctx context.Context, limit, offset int, customerId string) ([]models.Project, error) {
	projects, err := s.store.GetProjects(ctx, limit, offset, customerId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetProjects: %w", err)
	}

	for i := range projects {
		visits, err := s.store.GetProjectVisits(ctx, projects[i].Id)
		if err != nil {
			return nil, fmt.Errorf("service.Service.GetProjects: %w", err)
		}
		projects[i].Status = status.Canonical(projects[i], visits)
	}

	return projects, nil
}

func (s *Service) GetProjectBids(ctx context.Context, projectId string) ([]models.Bid, error) {
	if _, err := s.loadProject(ctx, projectId); err != nil {
		return nil, fmt.Errorf("service.Service.GetProjectBids: %w", err)
	}

	bids, err := s.store.GetProjectBids(ctx, projectId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetProjectBids: %w", err)
	}
	return bids, nil
}

// ContractorView derives the per-contractor status that drives what the
// contractor is allowed to do next.
func (s *Service) ContractorView(ctx context.Context, projectId, contractorId string) (status.ContractorView, error) {
	project, visits, err := s.projectWithVisits(ctx, projectId)
	if err != nil {
		return status.ContractorView{}, fmt.Errorf("service.Service.ContractorView: %w", err)
	}

	bids, err := s.store.GetProjectBids(ctx, projectId)
	if err != nil {
		return status.ContractorView{}, fmt.Errorf("service.Service.ContractorView: %w", err)
	}

	return status.Contractor(project, contractorId, bids, visits), nil
}

// AdvanceProject applies an explicit stage command: approval, opening or
// closing bidding, starting work, completing or cancelling. Closing bidding
// with no winner is a legal, first-class transition. Targets outside the
// allowed edges fail with models.ErrInvalidState and no write.
func (s *Service) AdvanceProject(ctx context.Context, projectId string, target models.ProjectStatus) (models.Project, error) {
	project, err := s.loadProject(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.AdvanceProject: %w", err)
	}

	if !advanceAllowed(project, target) {
		return models.Project{}, fmt.Errorf("service.Service.AdvanceProject: %w: %s -> %s",
			models.ErrInvalidState, project.Status, target)
	}

	err = s.store.UpdateProjectStatus(ctx, projectId, target)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.Service.AdvanceProject: %w", err)
	}

	project.Status = target
	return project, nil
}

func advanceAllowed(project models.Project, target models.ProjectStatus) bool {
	switch target {
	case models.ProjectCancelled:
		return !models.TerminalStatus(project.Status)
	case models.ProjectApproved:
		return project.Status == models.ProjectPending
	case models.ProjectBidding:
		return project.Status == models.ProjectApproved || project.Status == models.ProjectSiteVisitPending
	case models.ProjectBiddingClosed:
		return project.Status == models.ProjectBidding
	case models.ProjectInProgress:
		// work can only start on the selected contractor's bid
		return project.Status == models.ProjectBiddingClosed && project.Selected()
	case models.ProjectCompleted:
		return project.Status == models.ProjectInProgress
	default:
		// Pending is the creation state and SiteVisitPending is derived,
		// neither is a valid explicit target
		return false
	}
}

//// Service

func (s *Service) loadProject(ctx context.Context, projectId string) (models.Project, error) {
	project, err := s.store.GetProjectByUUID(ctx, projectId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, models.ErrNoProject
	} else if err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (s *Service) projectWithVisits(ctx context.Context, projectId string) (models.Project, []models.SiteVisitApplication, error) {
	project, err := s.loadProject(ctx, projectId)
	if err != nil {
		return models.Project{}, nil, err
	}

	visits, err := s.store.GetProjectVisits(ctx, projectId)
	if err != nil {
		return models.Project{}, nil, err
	}

	return project, visits, nil
}
