package models

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenanceStatusPending    MaintenanceStatus = "Pending"
	MaintenanceStatusApproved   MaintenanceStatus = "Approved"
	MaintenanceStatusInProgress MaintenanceStatus = "In Progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "Completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "Cancelled"
	MaintenanceStatusInspected  MaintenanceStatus = "Inspected"
	MaintenanceStatusIncomplete MaintenanceStatus = "Incomplete"
)

// EquipmentLineItem is one line of a maintenance expense report.
// Total is always recomputed server side.
type EquipmentLineItem struct {
	Name         string  `json:"name,omitempty"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"`
	Total        float64 `json:"total"`
}

type MaintenanceRequest struct {
	ID                      uuid.UUID           `json:"id" db:"id"`
	TenantID                uuid.UUID           `json:"tenant_id" db:"tenant_id"`
	PropertyID              uuid.UUID           `json:"property_id" db:"property_id"`
	Title                   string              `json:"title" db:"title"`
	Description             *string             `json:"description" db:"description"`
	Status                  MaintenanceStatus   `json:"status" db:"status"`
	AssignedMaintainers     []uuid.UUID         `json:"assigned_maintainers" db:"assigned_maintainers"`
	ScheduledDate           *time.Time          `json:"scheduled_date" db:"scheduled_date"`
	EstimatedCompletionTime *float64            `json:"estimated_completion_time" db:"estimated_completion_time"`
	OriginalPropertyStatus  *PropertyStatus     `json:"original_property_status" db:"original_property_status"`
	InspectedBy             *uuid.UUID          `json:"inspected_by" db:"inspected_by"`
	InspectionDate          *time.Time          `json:"inspection_date" db:"inspection_date"`
	Feedback                *string             `json:"feedback" db:"feedback"`
	InspectionFiles         []string            `json:"inspection_files" db:"inspection_files"`
	LaborCost               float64             `json:"labor_cost" db:"labor_cost"`
	EquipmentCost           []EquipmentLineItem `json:"equipment_cost" db:"equipment_cost"`
	TotalExpenses           float64             `json:"total_expenses" db:"total_expenses"`
	CreatedAt               time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time           `json:"updated_at" db:"updated_at"`
}
