package models

import "time"

// Customer and Contractor are read-only reference data for this subsystem.
// The lifecycle core never mutates them; it only reads identity and contact
// fields for notification payloads.

type Customer struct {
	Id        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Contractor struct {
	Id          string    `json:"id" db:"id"`
	CompanyName string    `json:"companyName" db:"company_name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
