package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"renohub/internal/models"
	"renohub/internal/notify"
)

// mockStore is an in-memory Storage with the same invariants the postgres
// schema enforces: the partial unique index on active applications, the
// unique live bid per pair, and the selected_bid_id IS NULL guard on
// selection. One mutex serializes everything, which is what row locks give
// the real store per project.
type mockStore struct {
	mu          sync.Mutex
	projects    map[string]models.Project
	visits      map[string]models.SiteVisitApplication
	bids        map[string]models.Bid
	customers   map[string]models.Customer
	contractors map[string]models.Contractor
}

func newMockStore() *mockStore {
	return &mockStore{
		projects:    make(map[string]models.Project),
		visits:      make(map[string]models.SiteVisitApplication),
		bids:        make(map[string]models.Bid),
		customers:   make(map[string]models.Customer),
		contractors: make(map[string]models.Contractor),
	}
}

func (m *mockStore) seedCustomer() models.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.Customer{Id: uuid.NewString(), Name: gofakeit.Name(), Email: gofakeit.Email()}
	m.customers[c.Id] = c
	return c
}

func (m *mockStore) seedContractor() models.Contractor {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.Contractor{Id: uuid.NewString(), CompanyName: gofakeit.Company(), Email: gofakeit.Email(), Phone: gofakeit.Phone()}
	m.contractors[c.Id] = c
	return c
}

func (m *mockStore) seedProject(customerId string, status models.ProjectStatus) models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Project{
		Id:          uuid.NewString(),
		CustomerId:  customerId,
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Sentence(10),
		Status:      status,
	}
	m.projects[p.Id] = p
	return p
}

//// Storage implementation

func (m *mockStore) AddProject(_ context.Context, project models.Project) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[project.Id] = project
	return project, nil
}

func (m *mockStore) GetProjectByUUID(_ context.Context, UUID string) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[UUID]
	if !ok {
		return models.Project{}, sql.ErrNoRows
	}
	return p, nil
}

func (m *mockStore) GetProjects(_ context.Context, limit, offset int, customerId string) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Project
	for _, p := range m.projects {
		if customerId == "" || p.CustomerId == customerId {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockStore) UpdateProjectStatus(_ context.Context, UUID string, status models.ProjectStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[UUID]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = status
	m.projects[UUID] = p
	return nil
}

func (m *mockStore) SelectBid(_ context.Context, projectId, contractorId, bidId string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectId]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if p.SelectedBidId != nil {
		return nil, models.ErrAlreadySelected
	}
	if models.TerminalStatus(p.Status) {
		return nil, models.ErrInvalidState
	}

	bid, ok := m.bids[bidId]
	if !ok || bid.ProjectId != projectId || bid.Status != models.BidSubmitted {
		return nil, models.ErrNoBid
	}

	p.SelectedContractorId = &contractorId
	p.SelectedBidId = &bidId
	p.Status = models.ProjectBiddingClosed
	m.projects[projectId] = p

	bid.Status = models.BidAccepted
	m.bids[bidId] = bid

	var rejected []string
	for id, b := range m.bids {
		if b.ProjectId == projectId && id != bidId {
			b.Status = models.BidRejected
			m.bids[id] = b
			rejected = append(rejected, id)
		}
	}

	return rejected, nil
}

func (m *mockStore) AddVisit(_ context.Context, visit models.SiteVisitApplication) (models.SiteVisitApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.visits {
		if v.ProjectId == visit.ProjectId && v.ContractorId == visit.ContractorId && !v.IsCancelled {
			return models.SiteVisitApplication{}, models.ErrDuplicateApplication
		}
	}
	m.visits[visit.Id] = visit
	return visit, nil
}

func (m *mockStore) GetVisitByUUID(_ context.Context, UUID string) (models.SiteVisitApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[UUID]
	if !ok {
		return models.SiteVisitApplication{}, sql.ErrNoRows
	}
	return v, nil
}

func (m *mockStore) GetProjectVisits(_ context.Context, projectId string) ([]models.SiteVisitApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.SiteVisitApplication
	for _, v := range m.visits {
		if v.ProjectId == projectId {
			result = append(result, v)
		}
	}
	return result, nil
}

func (m *mockStore) CancelVisit(_ context.Context, UUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[UUID]
	if !ok {
		return sql.ErrNoRows
	}
	v.IsCancelled = true
	m.visits[UUID] = v
	return nil
}

func (m *mockStore) SetVisitStatus(_ context.Context, UUID string, status models.VisitStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[UUID]
	if !ok {
		return sql.ErrNoRows
	}
	v.Status = status
	m.visits[UUID] = v
	return nil
}

func (m *mockStore) AddBid(_ context.Context, bid models.Bid) (models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bids {
		if b.ProjectId == bid.ProjectId && b.ContractorId == bid.ContractorId {
			return models.Bid{}, models.ErrDuplicateBid
		}
	}
	if p, ok := m.projects[bid.ProjectId]; !ok || p.Status != models.ProjectBidding {
		return models.Bid{}, models.ErrInvalidState
	}
	m.bids[bid.Id] = bid
	return bid, nil
}

func (m *mockStore) GetBidByUUID(_ context.Context, UUID string) (models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[UUID]
	if !ok {
		return models.Bid{}, sql.ErrNoRows
	}
	return b, nil
}

func (m *mockStore) GetProjectBids(_ context.Context, projectId string) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Bid
	for _, b := range m.bids {
		if b.ProjectId == projectId {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockStore) DeleteBid(_ context.Context, UUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[UUID]
	if !ok {
		return models.ErrNoBid
	}
	if b.Status != models.BidSubmitted {
		return models.ErrInvalidState
	}
	delete(m.bids, UUID)
	return nil
}

func (m *mockStore) CustomerByUUID(_ context.Context, UUID string) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[UUID]
	if !ok {
		return models.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

func (m *mockStore) ContractorByUUID(_ context.Context, UUID string) (models.Contractor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contractors[UUID]
	if !ok {
		return models.Contractor{}, sql.ErrNoRows
	}
	return c, nil
}

//// Notifier capture

type mockNotifier struct {
	mu         sync.Mutex
	selections []notify.SelectionEvent
	visits     []notify.VisitEvent
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{}
}

func (n *mockNotifier) OnSelected(_ context.Context, event notify.SelectionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selections = append(n.selections, event)
}

func (n *mockNotifier) OnSiteVisitApplied(_ context.Context, event notify.VisitEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visits = append(n.visits, event)
}

func (n *mockNotifier) selectionEvents() []notify.SelectionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.SelectionEvent(nil), n.selections...)
}

func (n *mockNotifier) visitEvents() []notify.VisitEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.VisitEvent(nil), n.visits...)
}
