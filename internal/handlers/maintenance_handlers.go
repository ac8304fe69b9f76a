package handlers

import (
	"net/http"

	"rentflow/internal/common"
	"rentflow/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const inspectionFilesField = "files"

type MaintenanceHandlers struct {
	maintenanceService services.MaintenanceService
}

func NewMaintenanceHandlers(maintenanceService services.MaintenanceService) *MaintenanceHandlers {
	return &MaintenanceHandlers{maintenanceService: maintenanceService}
}

func (h *MaintenanceHandlers) CreateRequest(c echo.Context) error {
	var req services.CreateMaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	m, err := h.maintenanceService.CreateRequest(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// ListPropertyRequests lists the maintenance history of the property in :id.
func (h *MaintenanceHandlers) ListPropertyRequests(c echo.Context) error {
	propertyID, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	requests, err := h.maintenanceService.ListForProperty(c.Request().Context(), propertyID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"maintenance_requests": requests})
}

func (h *MaintenanceHandlers) GetRequest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	m, err := h.maintenanceService.GetRequest(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MaintenanceHandlers) AssignMaintainer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.AssignMaintainerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	m, err := h.maintenanceService.AssignMaintainer(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// InspectMaintenance takes inspected_by from the body and falls back to the acting user.
func (h *MaintenanceHandlers) InspectMaintenance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.InspectMaintenanceRequest
	if err := bindPayload(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if user := actingUser(c); req.InspectedBy == uuid.Nil && user != nil {
		req.InspectedBy = *user
	}
	files, closeFiles, err := readUploads(c, inspectionFilesField)
	if err != nil {
		return err
	}
	defer closeFiles()

	m, err := h.maintenanceService.InspectMaintenance(c.Request().Context(), id, &req, files)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MaintenanceHandlers) SubmitExpense(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.MaintenanceExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	m, err := h.maintenanceService.SubmitMaintenanceExpense(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}
