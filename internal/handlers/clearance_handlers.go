package handlers

import (
	"context"
	"net/http"

	"rentflow/internal/common"
	"rentflow/internal/models"
	"rentflow/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ClearanceHandlers struct {
	clearanceService services.ClearanceService
}

func NewClearanceHandlers(clearanceService services.ClearanceService) *ClearanceHandlers {
	return &ClearanceHandlers{clearanceService: clearanceService}
}

type InspectClearanceRequest struct {
	Feedback *string `json:"feedback,omitempty"`
}

func (h *ClearanceHandlers) CreateClearance(c echo.Context) error {
	var req services.CreateClearanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	clearance, err := h.clearanceService.CreateClearance(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, clearance)
}

func (h *ClearanceHandlers) GetClearance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	clearance, err := h.clearanceService.GetClearance(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, clearance)
}

// ApproveClearance records the acting user as approver.
func (h *ClearanceHandlers) ApproveClearance(c echo.Context) error {
	return h.decide(c, h.clearanceService.ApproveClearance)
}

func (h *ClearanceHandlers) RejectClearance(c echo.Context) error {
	return h.decide(c, h.clearanceService.RejectClearance)
}

type clearanceDecision func(ctx context.Context, id, approverID uuid.UUID) (*models.Clearance, error)

func (h *ClearanceHandlers) decide(c echo.Context, decision clearanceDecision) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	approver := actingUser(c)
	if approver == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	clearance, err := decision(c.Request().Context(), id, *approver)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, clearance)
}

func (h *ClearanceHandlers) InspectClearance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	inspector := actingUser(c)
	if inspector == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	var req InspectClearanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	clearance, err := h.clearanceService.InspectClearance(c.Request().Context(), id, *inspector, req.Feedback)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, clearance)
}
