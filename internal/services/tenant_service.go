package services

import (
	"context"
	"strings"

	"rentflow/internal/models"
	"rentflow/internal/repositories"

	"github.com/google/uuid"
)

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

type CreateTenantRequest struct {
	Name       string     `json:"name" validate:"required"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      *string    `json:"phone,omitempty"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
}

// UpdateTenantRequest carries profile fields only. Status is driven by leases and clearances.
type UpdateTenantRequest struct {
	Name       string     `json:"name" validate:"required"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      *string    `json:"phone,omitempty"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
}

// Create registers a tenant with no status; the first lease or clearance sets one.
func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	req.Name, req.Email = normalizeContact(req.Name, req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:         uuid.New(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		PropertyID: req.PropertyID,
		Status:     models.TenantStatusNone,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) Update(ctx context.Context, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error) {
	req.Name, req.Email = normalizeContact(req.Name, req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant.Name = req.Name
	tenant.Email = req.Email
	tenant.Phone = req.Phone
	tenant.PropertyID = req.PropertyID

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	limit, offset = clampPage(limit, offset)
	return s.tenantRepo.List(ctx, limit, offset)
}

// normalizeContact runs before validation so padded or mixed-case emails are accepted.
func normalizeContact(name, email string) (string, string) {
	return strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
