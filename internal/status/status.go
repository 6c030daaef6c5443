// Package status derives project lifecycle states from raw records.
//
// All functions are pure: they take the project row plus its related bid and
// site visit rows and compute a status, touching no I/O. Every dashboard and
// handler derives statuses through this package instead of recomputing its
// own variant of the rules.
package status

import "renohub/internal/models"

// ContractorStatus is the status of a project as seen by one specific
// contractor. It is derived on read, never stored.
type ContractorStatus string

const (
	Selected           ContractorStatus = "Selected"
	NotSelected        ContractorStatus = "NotSelected"
	Cancelled          ContractorStatus = "Cancelled"
	Bidding            ContractorStatus = "Bidding"
	FailedBid          ContractorStatus = "FailedBid"
	Quoted             ContractorStatus = "Quoted"
	SiteVisitCompleted ContractorStatus = "SiteVisitCompleted"
	SiteVisitApplied   ContractorStatus = "SiteVisitApplied"
	Approved           ContractorStatus = "Approved"
	Completed          ContractorStatus = "Completed"
	Pending            ContractorStatus = "Pending"
)

// ContractorView pairs the derived status with the bid sub-flag the UI uses
// to distinguish "bidding, no bid yet" from "bidding, bid submitted".
type ContractorView struct {
	Status     ContractorStatus `json:"status"`
	HasLiveBid bool             `json:"hasLiveBid"`
}

// Canonical returns the single project-wide lifecycle state. It starts from
// the stored status and applies two derivations: a selection forces at least
// BiddingClosed, and an approved project with at least one active site visit
// application presents as SiteVisitPending.
func Canonical(p models.Project, visits []models.SiteVisitApplication) models.ProjectStatus {
	s := p.Status

	if p.Selected() && models.StatusRank(s) < models.StatusRank(models.ProjectBiddingClosed) {
		return models.ProjectBiddingClosed
	}

	if s == models.ProjectApproved {
		for _, v := range visits {
			if v.Active() {
				return models.ProjectSiteVisitPending
			}
		}
	}

	return s
}

// Contractor derives the status of a project as seen by one contractor.
//
// The rules are evaluated top to bottom and the first match wins; two
// conditions can be true at once, so the order is the contract. The selection
// outcome dominates everything else because it is irreversible and customer
// facing, and "bidding closed without a bid" is kept distinct from "still has
// a chance" so contractors get accurate feedback.
func Contractor(p models.Project, contractorId string, bids []models.Bid, visits []models.SiteVisitApplication) ContractorView {
	canonical := Canonical(p, visits)
	bid := contractorBid(bids, contractorId)
	visit := contractorVisit(visits, contractorId)

	view := ContractorView{HasLiveBid: bid != nil}

	switch {
	case p.SelectedContractorId != nil && *p.SelectedContractorId == contractorId:
		view.Status = Selected

	case p.SelectedContractorId != nil:
		view.Status = NotSelected

	case canonical == models.ProjectCancelled:
		view.Status = Cancelled

	case canonical == models.ProjectBidding:
		view.Status = Bidding

	case canonical == models.ProjectBiddingClosed && visit != nil && bid == nil:
		view.Status = FailedBid

	case bid != nil && models.StatusRank(canonical) > models.StatusRank(models.ProjectBidding):
		view.Status = Quoted

	case visit != nil && visit.Status == models.VisitCompleted && bid == nil:
		view.Status = SiteVisitCompleted

	case visit != nil && visit.Status == models.VisitPending:
		view.Status = SiteVisitApplied

	case visit == nil && (canonical == models.ProjectApproved || canonical == models.ProjectSiteVisitPending):
		// the approved stage signals "you may apply now", whether or not
		// other contractors have applied already
		view.Status = Approved

	case canonical == models.ProjectCompleted:
		view.Status = Completed

	default:
		view.Status = Pending
	}

	return view
}

// contractorBid returns the contractor's live bid on the project, if any.
// Withdrawn bids are deleted rows, so any match is live.
func contractorBid(bids []models.Bid, contractorId string) *models.Bid {
	for i := range bids {
		if bids[i].ContractorId == contractorId {
			return &bids[i]
		}
	}
	return nil
}

// contractorVisit returns the contractor's active application, if any.
// Cancelled applications are history and never influence a status.
func contractorVisit(visits []models.SiteVisitApplication, contractorId string) *models.SiteVisitApplication {
	for i := range visits {
		if visits[i].ContractorId == contractorId && visits[i].Active() {
			return &visits[i]
		}
	}
	return nil
}
