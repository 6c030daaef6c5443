package models

import "time"

type ProjectStatus string

const (
	ProjectPending          ProjectStatus = "Pending"
	ProjectApproved         ProjectStatus = "Approved"
	ProjectSiteVisitPending ProjectStatus = "SiteVisitPending"
	ProjectBidding          ProjectStatus = "Bidding"
	ProjectBiddingClosed    ProjectStatus = "BiddingClosed"
	ProjectInProgress       ProjectStatus = "InProgress"
	ProjectCompleted        ProjectStatus = "Completed"
	ProjectCancelled        ProjectStatus = "Cancelled"
)

func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectPending, ProjectApproved, ProjectSiteVisitPending, ProjectBidding,
		ProjectBiddingClosed, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	default:
		return false
	}
}

// StatusRank orders the canonical lifecycle chain. Cancelled sits outside the
// chain and ranks as terminal.
func StatusRank(s ProjectStatus) int {
	switch s {
	case ProjectPending:
		return 0
	case ProjectApproved:
		return 1
	case ProjectSiteVisitPending:
		return 2
	case ProjectBidding:
		return 3
	case ProjectBiddingClosed:
		return 4
	case ProjectInProgress:
		return 5
	case ProjectCompleted, ProjectCancelled:
		return 6
	default:
		return -1
	}
}

func TerminalStatus(s ProjectStatus) bool {
	return s == ProjectCompleted || s == ProjectCancelled
}

type Project struct {
	Id                   string        `json:"id" db:"id"`
	CustomerId           string        `json:"customerId" db:"customer_id"`
	Title                string        `json:"title" db:"title"`
	Description          string        `json:"description" db:"description"`
	Status               ProjectStatus `json:"status" db:"status"`
	SelectedContractorId *string       `json:"selectedContractorId,omitempty" db:"selected_contractor_id"`
	SelectedBidId        *string       `json:"selectedBidId,omitempty" db:"selected_bid_id"`
	CreatedAt            time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time     `json:"-" db:"updated_at"`
}

// Selected reports whether the customer has already picked a winning bid.
// Once set, the selection fields never change.
func (p Project) Selected() bool {
	return p.SelectedBidId != nil && *p.SelectedBidId != ""
}
