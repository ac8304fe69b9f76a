package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Email      string       `json:"email" db:"email"`
	Phone      *string      `json:"phone" db:"phone"`
	PropertyID *uuid.UUID   `json:"property_id" db:"property_id"`
	LeaseID    *uuid.UUID   `json:"lease_id" db:"lease_id"`
	Status     TenantStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}
