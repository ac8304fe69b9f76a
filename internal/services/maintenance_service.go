package services

import (
	"context"
	"time"

	"rentflow/internal/common"
	"rentflow/internal/events"
	"rentflow/internal/metrics"
	"rentflow/internal/models"
	"rentflow/internal/repositories"
	"rentflow/internal/saga"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateMaintenanceRequest struct {
	TenantID    uuid.UUID `json:"tenant_id" validate:"required"`
	PropertyID  uuid.UUID `json:"property_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description *string   `json:"description,omitempty"`
}

type AssignMaintainerRequest struct {
	MaintainerIDs           []uuid.UUID `json:"maintainer_ids" validate:"required,min=1"`
	ScheduledDate           *time.Time  `json:"scheduled_date,omitempty"`
	EstimatedCompletionTime *float64    `json:"estimated_completion_time,omitempty"`
}

type InspectMaintenanceRequest struct {
	InspectedBy uuid.UUID `json:"inspected_by" validate:"required"`
	Feedback    *string   `json:"feedback,omitempty"`
}

type ExpenseLine struct {
	Name         string  `json:"name,omitempty"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	PricePerUnit float64 `json:"price_per_unit" validate:"gte=0"`
}

type MaintenanceExpenseRequest struct {
	LaborCost     float64       `json:"labor_cost" validate:"gte=0"`
	EquipmentCost []ExpenseLine `json:"equipment_cost" validate:"dive"`
}

type MaintenanceService interface {
	CreateRequest(ctx context.Context, req *CreateMaintenanceRequest) (*models.MaintenanceRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	// ListForProperty returns the property's requests, newest first.
	ListForProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error)
	AssignMaintainer(ctx context.Context, id uuid.UUID, req *AssignMaintainerRequest) (*models.MaintenanceRequest, error)
	InspectMaintenance(ctx context.Context, id uuid.UUID, req *InspectMaintenanceRequest, files []Upload) (*models.MaintenanceRequest, error)
	SubmitMaintenanceExpense(ctx context.Context, id uuid.UUID, req *MaintenanceExpenseRequest) (*models.MaintenanceRequest, error)
}

type maintenanceService struct {
	requests   repositories.MaintenanceRepository
	properties repositories.PropertyRepository
	tenants    repositories.TenantRepository
	status     StatusService
	policy     InspectionPolicy
	documents  DocumentStore
	publisher  events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewMaintenanceService(
	requests repositories.MaintenanceRepository,
	properties repositories.PropertyRepository,
	tenants repositories.TenantRepository,
	status StatusService,
	policy InspectionPolicy,
	documents DocumentStore,
	publisher events.Publisher,
	logger *zap.Logger,
) MaintenanceService {
	if policy == nil {
		policy = DefaultInspectionPolicy{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &maintenanceService{
		requests:   requests,
		properties: properties,
		tenants:    tenants,
		status:     status,
		policy:     policy,
		documents:  documents,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *maintenanceService) CreateRequest(ctx context.Context, req *CreateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.tenants.GetByID(ctx, req.TenantID); err != nil {
		return nil, err
	}
	if _, err := s.properties.GetByID(ctx, req.PropertyID); err != nil {
		return nil, err
	}

	m := &models.MaintenanceRequest{
		ID:          uuid.New(),
		TenantID:    req.TenantID,
		PropertyID:  req.PropertyID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.MaintenanceStatusPending,
	}
	if err := s.requests.Create(ctx, m); err != nil {
		s.logger.Error("Failed to create maintenance request", zap.String("property_id", req.PropertyID.String()), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *maintenanceService) GetRequest(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *maintenanceService) ListForProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.requests.ListByProperty(ctx, propertyID)
}

// snapshotStatus picks the status to restore after maintenance. A property that is already under
// maintenance keeps the snapshot taken at the first assignment.
func snapshotStatus(current models.PropertyStatus, existing *models.PropertyStatus) models.PropertyStatus {
	if current == models.PropertyStatusUnderMaintenance {
		if existing != nil && existing.Valid() && *existing != models.PropertyStatusUnderMaintenance {
			return *existing
		}
		return models.PropertyStatusOpen
	}
	if !current.Valid() {
		return models.PropertyStatusOpen
	}
	return current
}

func (s *maintenanceService) AssignMaintainer(ctx context.Context, id uuid.UUID, req *AssignMaintainerRequest) (*models.MaintenanceRequest, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.ScheduledDate != nil && !req.ScheduledDate.After(s.now()) {
		return nil, common.NewValidationError("scheduled_date must be in the future")
	}
	if req.EstimatedCompletionTime != nil && *req.EstimatedCompletionTime <= 0 {
		return nil, common.NewValidationError("estimated_completion_time must be positive")
	}

	m, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.GetByID(ctx, m.PropertyID)
	if err != nil {
		return nil, err
	}

	current := property.Status
	original := snapshotStatus(current, m.OriginalPropertyStatus)

	sg := saga.New("assign_maintainer", s.logger)
	sg.OnCompensate = metrics.RecordCompensation
	sg.Add(saga.Step{
		Name: "property_under_maintenance",
		Action: func(ctx context.Context) error {
			if current == models.PropertyStatusUnderMaintenance {
				return nil
			}
			return s.status.TransitionProperty(ctx, property.ID, current, models.PropertyStatusUnderMaintenance)
		},
		Compensate: func(ctx context.Context) error {
			if current == models.PropertyStatusUnderMaintenance {
				return nil
			}
			return s.status.RevertPropertyStatus(ctx, property.ID, models.PropertyStatusUnderMaintenance, original)
		},
	}).Add(saga.Step{
		Name: "start_request",
		Action: func(ctx context.Context) error {
			m.Status = models.MaintenanceStatusInProgress
			m.AssignedMaintainers = req.MaintainerIDs
			m.ScheduledDate = req.ScheduledDate
			m.EstimatedCompletionTime = req.EstimatedCompletionTime
			m.OriginalPropertyStatus = &original
			return s.requests.Update(ctx, m)
		},
	})

	if err := sg.Run(ctx); err != nil {
		s.logger.Error("Failed to assign maintainer",
			zap.String("maintenance_id", id.String()), zap.String("property_id", property.ID.String()), zap.Error(err))
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.New(events.MaintenanceAssigned, "maintenance", m.ID).
		With("property_id", property.ID.String()).
		With("original_property_status", string(original)))
	return m, nil
}

// InspectMaintenance restores the property before recording the inspection. Files are stored in a
// separate save after the status update; a file failure leaves the inspection recorded.
func (s *maintenanceService) InspectMaintenance(ctx context.Context, id uuid.UUID, req *InspectMaintenanceRequest, files []Upload) (*models.MaintenanceRequest, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	m, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.GetByID(ctx, m.PropertyID)
	if err != nil {
		return nil, err
	}

	outcome := s.policy.Maintenance(m, req.Feedback)
	current := property.Status
	// Only a property still held under maintenance is restored; anything else moved it on since.
	restoring := outcome.RestoreProperty && current == models.PropertyStatusUnderMaintenance && current != outcome.RestoreTo

	sg := saga.New("inspect_maintenance", s.logger)
	sg.OnCompensate = metrics.RecordCompensation
	sg.Add(saga.Step{
		Name: "restore_property",
		Action: func(ctx context.Context) error {
			if !restoring {
				return nil
			}
			return s.status.TransitionProperty(ctx, property.ID, current, outcome.RestoreTo)
		},
		Compensate: func(ctx context.Context) error {
			if !restoring || outcome.RestoreTo == outcome.FallbackTo {
				return nil
			}
			return s.status.RevertPropertyStatus(ctx, property.ID, outcome.RestoreTo, outcome.FallbackTo)
		},
	}).Add(saga.Step{
		Name: "mark_inspected",
		Action: func(ctx context.Context) error {
			inspectedAt := s.now()
			m.Status = models.MaintenanceStatusInspected
			m.InspectedBy = &req.InspectedBy
			m.InspectionDate = &inspectedAt
			m.Feedback = req.Feedback
			return s.requests.Update(ctx, m)
		},
	})

	if err := sg.Run(ctx); err != nil {
		s.logger.Error("Failed to inspect maintenance request",
			zap.String("maintenance_id", id.String()), zap.String("property_id", property.ID.String()), zap.Error(err))
		return nil, err
	}

	if len(files) > 0 {
		keys, err := storeUploads(ctx, s.documents, "maintenance/"+m.ID.String(), files, s.logger)
		if err != nil {
			s.logger.Error("Inspection recorded but files were not stored", zap.String("maintenance_id", id.String()), zap.Error(err))
			return nil, err
		}
		m.InspectionFiles = keys
		if err := s.requests.Update(ctx, m); err != nil {
			s.logger.Error("Failed to attach inspection files", zap.String("maintenance_id", id.String()), zap.Error(err))
			return nil, err
		}
	}

	publishEvent(ctx, s.publisher, s.logger, events.New(events.MaintenanceInspected, "maintenance", m.ID).
		With("property_id", property.ID.String()).
		With("restored_to", string(outcome.RestoreTo)))
	return m, nil
}

// SubmitMaintenanceExpense recomputes every line total; client supplied totals are ignored.
func (s *maintenanceService) SubmitMaintenanceExpense(ctx context.Context, id uuid.UUID, req *MaintenanceExpenseRequest) (*models.MaintenanceRequest, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	m, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]models.EquipmentLineItem, len(req.EquipmentCost))
	total := req.LaborCost
	for i, line := range req.EquipmentCost {
		lineTotal := line.Quantity * line.PricePerUnit
		items[i] = models.EquipmentLineItem{
			Name:         line.Name,
			Quantity:     line.Quantity,
			PricePerUnit: line.PricePerUnit,
			Total:        lineTotal,
		}
		total += lineTotal
	}

	m.LaborCost = req.LaborCost
	m.EquipmentCost = items
	m.TotalExpenses = total
	m.Status = models.MaintenanceStatusCompleted
	if err := s.requests.Update(ctx, m); err != nil {
		s.logger.Error("Failed to submit maintenance expense", zap.String("maintenance_id", id.String()), zap.Error(err))
		return nil, err
	}
	return m, nil
}
