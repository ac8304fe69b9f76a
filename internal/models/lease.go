package models

import (
	"time"

	"github.com/google/uuid"
)

type Lease struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	TenantID        uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	PropertyID      uuid.UUID   `json:"property_id" db:"property_id"`
	LeaseStart      time.Time   `json:"lease_start" db:"lease_start"`
	LeaseEnd        time.Time   `json:"lease_end" db:"lease_end"`
	MonthlyRent     *float64    `json:"monthly_rent" db:"monthly_rent"`
	SecurityDeposit *float64    `json:"security_deposit" db:"security_deposit"`
	Status          LeaseStatus `json:"status" db:"status"`
	Documents       []string    `json:"documents" db:"documents"`
	CreatedBy       *uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`

	// Populated on read paths that return the lease with its parties.
	Tenant   *Tenant   `json:"tenant,omitempty" db:"-"`
	Property *Property `json:"property,omitempty" db:"-"`
}

// ExpiredAt reports whether the lease has ended at the given instant.
// The boundary is inclusive: a lease ending exactly now is expired.
func (l *Lease) ExpiredAt(now time.Time) bool {
	return !l.LeaseEnd.After(now)
}
