package models

import (
	"time"

	"github.com/google/uuid"
)

type ClearanceStatus string

const (
	ClearanceStatusPending  ClearanceStatus = "Pending"
	ClearanceStatusApproved ClearanceStatus = "Approved"
	ClearanceStatusRejected ClearanceStatus = "Rejected"
)

type InspectionStatus string

const (
	InspectionStatusPending InspectionStatus = "Pending"
	InspectionStatusPassed  InspectionStatus = "Passed"
	InspectionStatusFailed  InspectionStatus = "Failed"
)

type Clearance struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	TenantID         uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	PropertyID       *uuid.UUID       `json:"property_id" db:"property_id"`
	MoveOutDate      time.Time        `json:"move_out_date" db:"move_out_date"`
	Reason           *string          `json:"reason" db:"reason"`
	Status           ClearanceStatus  `json:"status" db:"status"`
	ApprovedBy       *uuid.UUID       `json:"approved_by" db:"approved_by"`
	InspectionStatus InspectionStatus `json:"inspection_status" db:"inspection_status"`
	InspectionBy     *uuid.UUID       `json:"inspection_by" db:"inspection_by"`
	InspectionDate   *time.Time       `json:"inspection_date" db:"inspection_date"`
	Feedback         *string          `json:"feedback" db:"feedback"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}
