package models

import "time"

type BidStatus string

const (
	BidSubmitted BidStatus = "Submitted"
	BidAccepted  BidStatus = "Accepted"
	BidRejected  BidStatus = "Rejected"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidSubmitted, BidAccepted, BidRejected:
		return true
	default:
		return false
	}
}

// Bid is a contractor's priced offer for a project. A withdrawn bid is a
// deleted row, so every stored bid is live; at most one exists per
// (project, contractor) pair. Accepted/Rejected are set exactly once, by the
// selection transaction.
type Bid struct {
	Id           string    `json:"id" db:"id"`
	ProjectId    string    `json:"projectId" db:"project_id"`
	ContractorId string    `json:"contractorId" db:"contractor_id"`
	Price        float64   `json:"price" db:"price"`
	Description  string    `json:"description" db:"description"`
	DocumentRef  *string   `json:"documentRef,omitempty" db:"document_ref"`
	Status       BidStatus `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"-" db:"updated_at"`
}
