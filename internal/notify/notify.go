// Package notify defines the outbound notification contract of the lifecycle
// core. The core emits events after its own state change commits; delivery is
// best effort and must never influence the committed state.
package notify

import (
	"context"
	"log"

	"renohub/internal/models"
)

// SelectionEvent carries everything the notification channel needs to inform
// the winning contractor, the losing bidders and the customer.
type SelectionEvent struct {
	Project           models.Project    `json:"project"`
	WinningBid        models.Bid        `json:"winningBid"`
	WinningContractor models.Contractor `json:"winningContractor"`
	Customer          models.Customer   `json:"customer"`
	RejectedBidIds    []string          `json:"rejectedBidIds"`
}

// VisitEvent tells a customer that a contractor wants to visit the site.
type VisitEvent struct {
	Project     models.Project              `json:"project"`
	Contractor  models.Contractor           `json:"contractor"`
	Application models.SiteVisitApplication `json:"application"`
}

type Notifier interface {
	OnSelected(ctx context.Context, event SelectionEvent)
	OnSiteVisitApplied(ctx context.Context, event VisitEvent)
}

// LogNotifier is the default sink; real delivery (mail, push) lives outside
// this module and plugs in through the Notifier interface.
type LogNotifier struct{}

func (LogNotifier) OnSelected(_ context.Context, event SelectionEvent) {
	log.Printf("notify: project %s selected contractor %s (bid %s, %d rejected)",
		event.Project.Id, event.WinningContractor.Id, event.WinningBid.Id, len(event.RejectedBidIds))
}

func (LogNotifier) OnSiteVisitApplied(_ context.Context, event VisitEvent) {
	log.Printf("notify: contractor %s applied for a site visit on project %s",
		event.Contractor.Id, event.Project.Id)
}
