package models

import "time"

type VisitStatus string

const (
	VisitPending   VisitStatus = "Pending"
	VisitCompleted VisitStatus = "Completed"
)

func ValidVisitStatus(s VisitStatus) bool {
	switch s {
	case VisitPending, VisitCompleted:
		return true
	default:
		return false
	}
}

// SiteVisitApplication is a contractor's request to inspect a project site
// before bidding. Cancellation is a soft delete: the row stays for history
// and a new application may be filed afterwards. At most one non-cancelled
// row may exist per (project, contractor) pair, enforced by a partial unique
// index in the store.
type SiteVisitApplication struct {
	Id           string      `json:"id" db:"id"`
	ProjectId    string      `json:"projectId" db:"project_id"`
	ContractorId string      `json:"contractorId" db:"contractor_id"`
	Status       VisitStatus `json:"status" db:"status"`
	IsCancelled  bool        `json:"isCancelled" db:"is_cancelled"`
	AppliedAt    time.Time   `json:"appliedAt" db:"applied_at"`
	UpdatedAt    time.Time   `json:"-" db:"updated_at"`
}

// Active reports whether this application still counts toward the
// one-active-per-pair invariant.
func (a SiteVisitApplication) Active() bool {
	return !a.IsCancelled
}
