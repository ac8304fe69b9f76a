package services

import (
	"context"

	"rentflow/internal/caching"
	"rentflow/internal/common"
	"rentflow/internal/events"
	"rentflow/internal/metrics"
	"rentflow/internal/models"
	"rentflow/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusService owns the property and tenant status fields. Every write is a
// compare-and-set against the status that was read, so a concurrent change
// surfaces as a conflict instead of being overwritten.
type StatusService interface {
	SetPropertyStatus(ctx context.Context, id uuid.UUID, next models.PropertyStatus) (*models.Property, error)
	SetTenantStatus(ctx context.Context, id uuid.UUID, next models.TenantStatus) (*models.Tenant, error)
	// TransitionProperty moves the property from -> to. It fails with a conflict if the stored status is no longer from.
	TransitionProperty(ctx context.Context, id uuid.UUID, from, to models.PropertyStatus) error
	// ReserveProperty moves an open property to reserved and fails with a conflict if it is not open.
	ReserveProperty(ctx context.Context, id uuid.UUID) error
	// RevertPropertyStatus undoes a forward move. It is not checked against the transition table.
	RevertPropertyStatus(ctx context.Context, id uuid.UUID, from, to models.PropertyStatus) error
	// ActivateTenant marks the tenant active and links it to the lease.
	ActivateTenant(ctx context.Context, tenantID, leaseID uuid.UUID) error
}

type statusService struct {
	properties    repositories.PropertyRepository
	tenants       repositories.TenantRepository
	cache         caching.CacheService
	publisher     events.Publisher
	propertyTable models.TransitionTable[models.PropertyStatus]
	tenantTable   models.TransitionTable[models.TenantStatus]
	logger        *zap.Logger
}

// NewStatusService wires the trackers. cache may be nil; a nil publisher drops events.
func NewStatusService(
	properties repositories.PropertyRepository,
	tenants repositories.TenantRepository,
	cache caching.CacheService,
	publisher events.Publisher,
	strict bool,
	logger *zap.Logger,
) StatusService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	s := &statusService{
		properties:    properties,
		tenants:       tenants,
		cache:         cache,
		publisher:     publisher,
		propertyTable: models.PermissivePropertyTransitions,
		tenantTable:   models.PermissiveTenantTransitions,
		logger:        logger,
	}
	if strict {
		s.propertyTable = models.StrictPropertyTransitions
		s.tenantTable = models.StrictTenantTransitions
	}
	return s
}

func (s *statusService) SetPropertyStatus(ctx context.Context, id uuid.UUID, next models.PropertyStatus) (*models.Property, error) {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.TransitionProperty(ctx, id, property.Status, next); err != nil {
		return nil, err
	}
	property.Status = next
	return property, nil
}

func (s *statusService) TransitionProperty(ctx context.Context, id uuid.UUID, from, to models.PropertyStatus) error {
	if !to.Valid() {
		return common.NewValidationError("invalid property status %q", to)
	}
	if !s.propertyTable.Allows(from, to) {
		return &common.InvalidTransitionError{Entity: "property", From: string(from), To: string(to)}
	}
	return s.casProperty(ctx, id, from, to)
}

func (s *statusService) ReserveProperty(ctx context.Context, id uuid.UUID) error {
	return s.TransitionProperty(ctx, id, models.PropertyStatusOpen, models.PropertyStatusReserved)
}

func (s *statusService) RevertPropertyStatus(ctx context.Context, id uuid.UUID, from, to models.PropertyStatus) error {
	return s.casProperty(ctx, id, from, to)
}

func (s *statusService) casProperty(ctx context.Context, id uuid.UUID, from, to models.PropertyStatus) error {
	ok, err := s.properties.UpdateStatusIf(ctx, id, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewConflictError("property %s is no longer %s", id, from)
	}
	s.propertyChanged(ctx, id, from, to)
	return nil
}

func (s *statusService) propertyChanged(ctx context.Context, id uuid.UUID, from, to models.PropertyStatus) {
	if s.cache != nil {
		s.refreshCachedProperty(ctx, id)
	}
	s.recordChange(ctx, "property", id, string(from), string(to))
}

// refreshCachedProperty writes the stored row through to the cache, replacing anything a concurrent
// reader cached from before the change. If the refresh fails the entry is evicted instead.
func (s *statusService) refreshCachedProperty(ctx context.Context, id uuid.UUID) {
	property, err := s.properties.GetByID(ctx, id)
	if err == nil {
		err = s.cache.SetProperty(ctx, property, propertyCacheTTL)
	}
	if err == nil {
		return
	}
	s.logger.Warn("Failed to refresh cached property", zap.String("property_id", id.String()), zap.Error(err))
	if err := s.cache.DeleteProperty(ctx, id); err != nil {
		s.logger.Warn("Failed to evict cached property", zap.String("property_id", id.String()), zap.Error(err))
	}
}

func (s *statusService) SetTenantStatus(ctx context.Context, id uuid.UUID, next models.TenantStatus) (*models.Tenant, error) {
	return s.transitionTenant(ctx, id, next)
}

func (s *statusService) ActivateTenant(ctx context.Context, tenantID, leaseID uuid.UUID) error {
	if _, err := s.transitionTenant(ctx, tenantID, models.TenantStatusActive); err != nil {
		return err
	}
	return s.tenants.SetLease(ctx, tenantID, &leaseID)
}

func (s *statusService) transitionTenant(ctx context.Context, id uuid.UUID, next models.TenantStatus) (*models.Tenant, error) {
	if next == models.TenantStatusNone || !next.Valid() {
		return nil, common.NewValidationError("invalid tenant status %q", next)
	}
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current := tenant.Status
	if !s.tenantTable.Allows(current, next) {
		return nil, &common.InvalidTransitionError{Entity: "tenant", From: string(current), To: string(next)}
	}
	ok, err := s.tenants.UpdateStatusIf(ctx, id, current, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.NewConflictError("tenant %s status changed concurrently", id)
	}
	s.recordChange(ctx, "tenant", id, string(current), string(next))
	tenant.Status = next
	return tenant, nil
}

func (s *statusService) recordChange(ctx context.Context, entity string, id uuid.UUID, from, to string) {
	metrics.RecordTransition(entity, from, to)

	event := events.New(events.StatusChanged, entity, id)
	event.From, event.To = from, to
	publishEvent(ctx, s.publisher, s.logger, event)
}
