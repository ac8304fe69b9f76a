package services

import (
	"context"
	"strings"
	"time"

	"rentflow/internal/caching"
	"rentflow/internal/models"
	"rentflow/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// propertyCacheTTL bounds how long a read that raced a status change can stay cached.
const propertyCacheTTL = 2 * time.Minute

type CreatePropertyRequest struct {
	Name        string  `json:"name" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	Unit        *string `json:"unit,omitempty"`
	MonthlyRent float64 `json:"monthly_rent" validate:"gte=0"`
	// Status defaults to open.
	Status models.PropertyStatus `json:"status,omitempty"`
}

type UpdatePropertyRequest struct {
	Name        string  `json:"name" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	Unit        *string `json:"unit,omitempty"`
	MonthlyRent float64 `json:"monthly_rent" validate:"gte=0"`
}

type PropertyService interface {
	Create(ctx context.Context, req *CreatePropertyRequest) (*models.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	// Update never writes the status field.
	Update(ctx context.Context, id uuid.UUID, req *UpdatePropertyRequest) (*models.Property, error)
	List(ctx context.Context, limit, offset int) ([]*models.Property, error)
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	cache        caching.CacheService
	logger       *zap.Logger
}

// NewPropertyService reads through the cache when one is given.
func NewPropertyService(propertyRepo repositories.PropertyRepository, cache caching.CacheService, logger *zap.Logger) PropertyService {
	return &propertyService{propertyRepo: propertyRepo, cache: cache, logger: logger}
}

func (s *propertyService) Create(ctx context.Context, req *CreatePropertyRequest) (*models.Property, error) {
	req.Name, req.Address = strings.TrimSpace(req.Name), strings.TrimSpace(req.Address)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.PropertyStatusOpen
	}
	parsed, err := models.ParsePropertyStatus(string(status))
	if err != nil {
		return nil, newValidationFromErr(err)
	}

	property := &models.Property{
		ID:          uuid.New(),
		Name:        req.Name,
		Address:     req.Address,
		Unit:        req.Unit,
		MonthlyRent: req.MonthlyRent,
		Status:      parsed,
	}
	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (s *propertyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProperty(ctx, id)
		if err != nil {
			s.logger.Warn("Property cache read failed", zap.String("property_id", id.String()), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProperty(ctx, property, propertyCacheTTL); err != nil {
			s.logger.Warn("Property cache write failed", zap.String("property_id", id.String()), zap.Error(err))
		}
	}
	return property, nil
}

func (s *propertyService) Update(ctx context.Context, id uuid.UUID, req *UpdatePropertyRequest) (*models.Property, error) {
	req.Name, req.Address = strings.TrimSpace(req.Name), strings.TrimSpace(req.Address)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	property.Name = req.Name
	property.Address = req.Address
	property.Unit = req.Unit
	property.MonthlyRent = req.MonthlyRent
	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteProperty(ctx, id); err != nil {
			s.logger.Warn("Failed to evict cached property", zap.String("property_id", id.String()), zap.Error(err))
		}
	}
	return property, nil
}

func (s *propertyService) List(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	limit, offset = clampPage(limit, offset)
	return s.propertyRepo.List(ctx, limit, offset)
}
