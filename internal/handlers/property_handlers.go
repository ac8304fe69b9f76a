package handlers

import (
	"net/http"

	"rentflow/internal/common"
	"rentflow/internal/services"

	"github.com/labstack/echo/v4"
)

type PropertyHandlers struct {
	propertyService services.PropertyService
}

func NewPropertyHandlers(propertyService services.PropertyService) *PropertyHandlers {
	return &PropertyHandlers{propertyService: propertyService}
}

func (h *PropertyHandlers) CreateProperty(c echo.Context) error {
	var req services.CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	property, err := h.propertyService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandlers) GetProperty(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	property, err := h.propertyService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

func (h *PropertyHandlers) UpdateProperty(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.UpdatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	property, err := h.propertyService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

func (h *PropertyHandlers) ListProperties(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	properties, err := h.propertyService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"properties": properties,
		"limit":      req.Limit,
		"offset":     req.Offset,
	})
}
