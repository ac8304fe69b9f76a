package services

import (
	"context"
	"errors"
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

type CreateLeaseRequest struct {
	TenantID        uuid.UUID  `json:"tenant_id" validate:"required"`
	PropertyID      uuid.UUID  `json:"property_id" validate:"required"`
	LeaseStart      *time.Time `json:"lease_start" validate:"required"`
	LeaseEnd        *time.Time `json:"lease_end" validate:"required"`
	MonthlyRent     *float64   `json:"monthly_rent,omitempty" validate:"omitempty,gte=0"`
	SecurityDeposit *float64   `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`
}

type UpdateLeaseRequest struct {
	LeaseStart      *time.Time `json:"lease_start,omitempty"`
	LeaseEnd        *time.Time `json:"lease_end,omitempty"`
	MonthlyRent     *float64   `json:"monthly_rent,omitempty" validate:"omitempty,gte=0"`
	SecurityDeposit *float64   `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`
}

type LeaseService interface {
	CreateLease(ctx context.Context, req *CreateLeaseRequest, files []Upload, actingUser *uuid.UUID) (*models.Lease, error)
	GetLease(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	ListLeases(ctx context.Context, limit, offset int) ([]*models.Lease, error)
	UpdateLease(ctx context.Context, id uuid.UUID, req *UpdateLeaseRequest, files []Upload) (*models.Lease, error)
	// DeleteLease returns nil, nil when the lease does not exist.
	DeleteLease(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	DocumentURLs(ctx context.Context, id uuid.UUID, expiry time.Duration) ([]string, error)
	// UpdateLeaseAndTenantStatuses expires every lease that has ended and deactivates its tenant.
	UpdateLeaseAndTenantStatuses(ctx context.Context) (*models.SweepResult, error)
}

type leaseService struct {
	leases     repositories.LeaseRepository
	tenants    repositories.TenantRepository
	properties repositories.PropertyRepository
	status     StatusService
	documents  DocumentStore
	publisher  events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewLeaseService(
	leases repositories.LeaseRepository,
	tenants repositories.TenantRepository,
	properties repositories.PropertyRepository,
	status StatusService,
	documents DocumentStore,
	publisher events.Publisher,
	logger *zap.Logger,
) LeaseService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &leaseService{
		leases:     leases,
		tenants:    tenants,
		properties: properties,
		status:     status,
		documents:  documents,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func leaseDocumentPrefix(id uuid.UUID) string {
	return "leases/" + id.String()
}

func (s *leaseService) CreateLease(ctx context.Context, req *CreateLeaseRequest, files []Upload, actingUser *uuid.UUID) (*models.Lease, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !req.LeaseEnd.After(*req.LeaseStart) {
		return nil, common.NewValidationError("lease_end must be after lease_start")
	}

	tenant, err := s.tenants.GetByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != models.PropertyStatusOpen {
		return nil, common.NewConflictError("property %s is %s, not open", property.ID, property.Status)
	}

	lease := &models.Lease{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		PropertyID:      property.ID,
		LeaseStart:      *req.LeaseStart,
		LeaseEnd:        *req.LeaseEnd,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		Status:          models.LeaseStatusActive,
		CreatedBy:       actingUser,
	}
	if lease.ExpiredAt(s.now()) {
		lease.Status = models.LeaseStatusExpired
	}

	// The persisted lease is kept even if a later step fails.
	sg := saga.New("create_lease", s.logger)
	sg.OnCompensate = metrics.RecordCompensation
	sg.Add(saga.Step{
		Name:   "persist_lease",
		Action: func(ctx context.Context) error { return s.leases.Create(ctx, lease) },
	}).Add(saga.Step{
		Name: "attach_documents",
		Action: func(ctx context.Context) error {
			if len(files) == 0 {
				return nil
			}
			keys, err := storeUploads(ctx, s.documents, leaseDocumentPrefix(lease.ID), files, s.logger)
			if err != nil {
				return err
			}
			lease.Documents = keys
			return s.leases.Update(ctx, lease)
		},
	}).Add(saga.Step{
		Name:   "reserve_property",
		Action: func(ctx context.Context) error { return s.status.ReserveProperty(ctx, property.ID) },
		Compensate: func(ctx context.Context) error {
			return s.status.RevertPropertyStatus(ctx, property.ID, models.PropertyStatusReserved, models.PropertyStatusOpen)
		},
	}).Add(saga.Step{
		Name:   "activate_tenant",
		Action: func(ctx context.Context) error { return s.status.ActivateTenant(ctx, tenant.ID, lease.ID) },
	})

	if err := sg.Run(ctx); err != nil {
		s.logger.Error("Failed to create lease",
			zap.String("lease_id", lease.ID.String()),
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("property_id", property.ID.String()),
			zap.Error(err))
		return nil, err
	}

	property.Status = models.PropertyStatusReserved
	tenant.Status = models.TenantStatusActive
	tenant.LeaseID = &lease.ID
	lease.Tenant = tenant
	lease.Property = property

	publishEvent(ctx, s.publisher, s.logger, events.New(events.LeaseCreated, "lease", lease.ID).
		With("tenant_id", tenant.ID.String()).
		With("property_id", property.ID.String()))
	return lease, nil
}

func (s *leaseService) GetLease(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return s.leases.GetByID(ctx, id)
}

func (s *leaseService) ListLeases(ctx context.Context, limit, offset int) ([]*models.Lease, error) {
	limit, offset = clampPage(limit, offset)
	return s.leases.List(ctx, limit, offset)
}

// UpdateLease re-checks expiry on every call, not only when lease_end changes.
func (s *leaseService) UpdateLease(ctx context.Context, id uuid.UUID, req *UpdateLeaseRequest, files []Upload) (*models.Lease, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	lease, err := s.leases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.LeaseStart != nil {
		lease.LeaseStart = *req.LeaseStart
	}
	if req.LeaseEnd != nil {
		lease.LeaseEnd = *req.LeaseEnd
	}
	if req.MonthlyRent != nil {
		lease.MonthlyRent = req.MonthlyRent
	}
	if req.SecurityDeposit != nil {
		lease.SecurityDeposit = req.SecurityDeposit
	}
	if !lease.LeaseEnd.After(lease.LeaseStart) {
		return nil, common.NewValidationError("lease_end must be after lease_start")
	}

	var replaced []string
	if len(files) > 0 {
		keys, err := storeUploads(ctx, s.documents, leaseDocumentPrefix(lease.ID), files, s.logger)
		if err != nil {
			return nil, err
		}
		replaced = lease.Documents
		lease.Documents = keys
	}

	// The write is guarded by the status read above, so a sweep that expired the lease meanwhile
	// turns this into a conflict instead of being overwritten.
	if err := s.leases.Update(ctx, lease); err != nil {
		s.logger.Error("Failed to update lease", zap.String("lease_id", id.String()), zap.Error(err))
		return nil, err
	}

	expired := lease.ExpiredAt(s.now())
	if expired {
		if _, err := s.leases.MarkExpired(ctx, lease.ID); err != nil {
			s.logger.Error("Failed to expire lease", zap.String("lease_id", id.String()), zap.Error(err))
			return nil, err
		}
		lease.Status = models.LeaseStatusExpired
	}

	if len(replaced) > 0 {
		if err := removeDocuments(ctx, s.documents, replaced); err != nil {
			s.logger.Warn("Failed to remove replaced lease documents", zap.String("lease_id", id.String()), zap.Error(err))
		}
	}

	if expired {
		if err := s.deactivateTenant(ctx, lease.TenantID); err != nil {
			s.logger.Error("Failed to deactivate tenant of expired lease",
				zap.String("lease_id", id.String()), zap.String("tenant_id", lease.TenantID.String()), zap.Error(err))
			return nil, err
		}
	}
	return lease, nil
}

// DeleteLease removes the stored documents first; a failed removal aborts the delete.
// Property and tenant statuses are left as they are.
func (s *leaseService) DeleteLease(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	lease, err := s.leases.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := removeDocuments(ctx, s.documents, lease.Documents); err != nil {
		s.logger.Error("Failed to remove lease documents", zap.String("lease_id", id.String()), zap.Error(err))
		return nil, err
	}
	if err := s.leases.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete lease", zap.String("lease_id", id.String()), zap.Error(err))
		return nil, err
	}
	return lease, nil
}

func (s *leaseService) DocumentURLs(ctx context.Context, id uuid.UUID, expiry time.Duration) ([]string, error) {
	lease, err := s.leases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(lease.Documents))
	for _, key := range lease.Documents {
		u, err := s.documents.PresignedURL(ctx, key, expiry)
		if err != nil {
			return nil, common.NewFileSystemError("presign "+key, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// UpdateLeaseAndTenantStatuses keeps going past a failing lease and returns every failure joined.
// A lease another run already expired is skipped, so overlapping runs do not double count.
func (s *leaseService) UpdateLeaseAndTenantStatuses(ctx context.Context) (*models.SweepResult, error) {
	now := s.now()
	result := &models.SweepResult{StartedAt: now}

	leases, err := s.leases.ListExpirable(ctx, now)
	if err != nil {
		result.FinishedAt = s.now()
		return result, err
	}

	var errs []error
	for _, lease := range leases {
		expired, err := s.leases.MarkExpired(ctx, lease.ID)
		if err != nil {
			result.Failures++
			errs = append(errs, err)
			continue
		}
		if !expired {
			continue
		}
		result.LeasesExpired++
		publishEvent(ctx, s.publisher, s.logger, events.New(events.LeaseExpired, "lease", lease.ID).With("tenant_id", lease.TenantID.String()))

		_, err = s.status.SetTenantStatus(ctx, lease.TenantID, models.TenantStatusInactive)
		switch {
		case errors.Is(err, common.ErrNotFound):
			s.logger.Debug("Expired lease has no tenant", zap.String("lease_id", lease.ID.String()))
		case err != nil:
			result.Failures++
			errs = append(errs, err)
		default:
			result.TenantsDeactivated++
		}
	}

	result.FinishedAt = s.now()
	return result, errors.Join(errs...)
}

func (s *leaseService) deactivateTenant(ctx context.Context, tenantID uuid.UUID) error {
	_, err := s.status.SetTenantStatus(ctx, tenantID, models.TenantStatusInactive)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}
