package handlers

import (
	"net/http"
	"time"

	"rentflow/internal/common"
	"rentflow/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	leaseDocumentsField = "documents"
	documentURLExpiry   = 15 * time.Minute
)

type LeaseHandlers struct {
	leaseService services.LeaseService
	logger       *zap.Logger
}

func NewLeaseHandlers(leaseService services.LeaseService, logger *zap.Logger) *LeaseHandlers {
	return &LeaseHandlers{leaseService: leaseService, logger: logger}
}

// CreateLease accepts either a JSON body or a multipart form with the JSON in "payload" and files in "documents".
func (h *LeaseHandlers) CreateLease(c echo.Context) error {
	var req services.CreateLeaseRequest
	if err := bindPayload(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	files, closeFiles, err := readUploads(c, leaseDocumentsField)
	if err != nil {
		return err
	}
	defer closeFiles()

	lease, err := h.leaseService.CreateLease(c.Request().Context(), &req, files, actingUser(c))
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, lease)
}

func (h *LeaseHandlers) ListLeases(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	leases, err := h.leaseService.ListLeases(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"leases": leases,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

func (h *LeaseHandlers) GetLease(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	lease, err := h.leaseService.GetLease(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, lease)
}

func (h *LeaseHandlers) UpdateLease(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.UpdateLeaseRequest
	if err := bindPayload(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	files, closeFiles, err := readUploads(c, leaseDocumentsField)
	if err != nil {
		return err
	}
	defer closeFiles()

	lease, err := h.leaseService.UpdateLease(c.Request().Context(), id, &req, files)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, lease)
}

func (h *LeaseHandlers) DeleteLease(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	lease, err := h.leaseService.DeleteLease(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	if lease == nil {
		return common.SendNotFoundError(c, "Lease")
	}
	return c.JSON(http.StatusOK, lease)
}

func (h *LeaseHandlers) GetLeaseDocuments(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	urls, err := h.leaseService.DocumentURLs(c.Request().Context(), id, documentURLExpiry)
	if err != nil {
		h.logger.Error("Failed to presign lease documents", zap.String("lease_id", id.String()), zap.Error(err))
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"documents":  urls,
		"expires_in": int(documentURLExpiry.Seconds()),
	})
}
