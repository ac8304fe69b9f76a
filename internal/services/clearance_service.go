package services

import (
	"context"
	"time"

	"rentflow/internal/events"
	"rentflow/internal/metrics"
	"rentflow/internal/models"
	"rentflow/internal/repositories"
	"rentflow/internal/saga"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateClearanceRequest struct {
	TenantID    uuid.UUID  `json:"tenant_id" validate:"required"`
	PropertyID  *uuid.UUID `json:"property_id" validate:"required"`
	MoveOutDate *time.Time `json:"move_out_date" validate:"required"`
	Reason      *string    `json:"reason,omitempty"`
}

type ClearanceService interface {
	CreateClearance(ctx context.Context, req *CreateClearanceRequest) (*models.Clearance, error)
	GetClearance(ctx context.Context, id uuid.UUID) (*models.Clearance, error)
	ApproveClearance(ctx context.Context, id, approverID uuid.UUID) (*models.Clearance, error)
	RejectClearance(ctx context.Context, id, approverID uuid.UUID) (*models.Clearance, error)
	InspectClearance(ctx context.Context, id, inspectorID uuid.UUID, feedback *string) (*models.Clearance, error)
}

type clearanceService struct {
	clearances repositories.ClearanceRepository
	properties repositories.PropertyRepository
	status     StatusService
	policy     InspectionPolicy
	publisher  events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewClearanceService(
	clearances repositories.ClearanceRepository,
	properties repositories.PropertyRepository,
	status StatusService,
	policy InspectionPolicy,
	publisher events.Publisher,
	logger *zap.Logger,
) ClearanceService {
	if policy == nil {
		policy = DefaultInspectionPolicy{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &clearanceService{
		clearances: clearances,
		properties: properties,
		status:     status,
		policy:     policy,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateClearance saves the request, then marks the tenant pending. The tenant update is best effort.
func (s *clearanceService) CreateClearance(ctx context.Context, req *CreateClearanceRequest) (*models.Clearance, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	c := &models.Clearance{
		ID:               uuid.New(),
		TenantID:         req.TenantID,
		PropertyID:       req.PropertyID,
		MoveOutDate:      *req.MoveOutDate,
		Reason:           req.Reason,
		Status:           models.ClearanceStatusPending,
		InspectionStatus: models.InspectionStatusPending,
	}
	if err := s.clearances.Create(ctx, c); err != nil {
		s.logger.Error("Failed to create clearance", zap.String("tenant_id", req.TenantID.String()), zap.Error(err))
		return nil, err
	}

	if _, err := s.status.SetTenantStatus(ctx, c.TenantID, models.TenantStatusPending); err != nil {
		s.logger.Warn("Clearance created but tenant was not marked pending",
			zap.String("clearance_id", c.ID.String()), zap.String("tenant_id", c.TenantID.String()), zap.Error(err))
	}
	return c, nil
}

func (s *clearanceService) GetClearance(ctx context.Context, id uuid.UUID) (*models.Clearance, error) {
	return s.clearances.GetByID(ctx, id)
}

func (s *clearanceService) ApproveClearance(ctx context.Context, id, approverID uuid.UUID) (*models.Clearance, error) {
	c, err := s.clearances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := *c

	sg := saga.New("approve_clearance", s.logger)
	sg.OnCompensate = metrics.RecordCompensation
	sg.Add(saga.Step{
		Name: "approve",
		Action: func(ctx context.Context) error {
			c.Status = models.ClearanceStatusApproved
			c.ApprovedBy = &approverID
			return s.clearances.Update(ctx, c)
		},
		Compensate: func(ctx context.Context) error {
			restored := previous
			return s.clearances.Update(ctx, &restored)
		},
	})

	if c.PropertyID != nil {
		propertyID := *c.PropertyID
		var before models.PropertyStatus
		sg.Add(saga.Step{
			Name: "open_property",
			Action: func(ctx context.Context) error {
				property, err := s.properties.GetByID(ctx, propertyID)
				if err != nil {
					return err
				}
				before = property.Status
				if before == models.PropertyStatusOpen {
					return nil
				}
				return s.status.TransitionProperty(ctx, propertyID, before, models.PropertyStatusOpen)
			},
			Compensate: func(ctx context.Context) error {
				if before == "" || before == models.PropertyStatusOpen {
					return nil
				}
				return s.status.RevertPropertyStatus(ctx, propertyID, models.PropertyStatusOpen, before)
			},
		}).Add(saga.Step{
			Name: "deactivate_tenant",
			Action: func(ctx context.Context) error {
				_, err := s.status.SetTenantStatus(ctx, c.TenantID, models.TenantStatusInactive)
				return err
			},
		})
	}

	if err := sg.Run(ctx); err != nil {
		s.logger.Error("Failed to approve clearance",
			zap.String("clearance_id", id.String()), zap.String("tenant_id", c.TenantID.String()), zap.Error(err))
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.New(events.ClearanceApproved, "clearance", c.ID).
		With("tenant_id", c.TenantID.String()).
		With("approved_by", approverID.String()))
	return c, nil
}

// RejectClearance does not touch the tenant, which stays pending until someone moves it by hand.
func (s *clearanceService) RejectClearance(ctx context.Context, id, approverID uuid.UUID) (*models.Clearance, error) {
	c, err := s.clearances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = models.ClearanceStatusRejected
	c.ApprovedBy = &approverID
	if err := s.clearances.Update(ctx, c); err != nil {
		s.logger.Error("Failed to reject clearance", zap.String("clearance_id", id.String()), zap.Error(err))
		return nil, err
	}

	publishEvent(ctx, s.publisher, s.logger, events.New(events.ClearanceRejected, "clearance", c.ID).
		With("tenant_id", c.TenantID.String()))
	return c, nil
}

// InspectClearance records feedback only; the verdict comes from the inspection policy.
func (s *clearanceService) InspectClearance(ctx context.Context, id, inspectorID uuid.UUID, feedback *string) (*models.Clearance, error) {
	c, err := s.clearances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inspectedAt := s.now()
	c.InspectionStatus = s.policy.Clearance(c, feedback)
	c.InspectionBy = &inspectorID
	c.InspectionDate = &inspectedAt
	c.Feedback = feedback
	if err := s.clearances.Update(ctx, c); err != nil {
		s.logger.Error("Failed to inspect clearance", zap.String("clearance_id", id.String()), zap.Error(err))
		return nil, err
	}
	return c, nil
}
