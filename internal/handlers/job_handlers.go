package handlers

import (
	"context"
	"errors"
	"net/http"

	"rentflow/internal/common"
	"rentflow/internal/jobs"
	"rentflow/internal/jobs/background"
	"rentflow/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Sweeper is the lease sweep as seen by the admin endpoints.
type Sweeper interface {
	Run(ctx context.Context) (*models.SweepResult, error)
	LastSummary(ctx context.Context) (*models.SweepResult, error)
}

// JobLister reports scheduled jobs and can queue one out of schedule.
type JobLister interface {
	Jobs() []background.JobInfo
	RunNow(name string) error
}

type JobHandlers struct {
	sweep     Sweeper
	scheduler JobLister
	logger    *zap.Logger
}

// NewJobHandlers creates the admin job handlers. scheduler may be nil.
func NewJobHandlers(sweep Sweeper, scheduler JobLister, logger *zap.Logger) *JobHandlers {
	return &JobHandlers{sweep: sweep, scheduler: scheduler, logger: logger}
}

// GetSweep returns the last recorded sweep summary and the schedule.
func (h *JobHandlers) GetSweep(c echo.Context) error {
	last, err := h.sweep.LastSummary(c.Request().Context())
	if err != nil {
		h.logger.Warn("Failed to read last sweep summary", zap.Error(err))
	}

	var scheduled []background.JobInfo
	if h.scheduler != nil {
		scheduled = h.scheduler.Jobs()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"last_run": last,
		"jobs":     scheduled,
	})
}

// TriggerSweep runs the sweep now. Per-lease failures are reported alongside the summary.
func (h *JobHandlers) TriggerSweep(c echo.Context) error {
	result, err := h.sweep.Run(c.Request().Context())
	switch {
	case errors.Is(err, jobs.ErrSweepRunning):
		return c.JSON(http.StatusConflict, common.CreateErrorResponse("SWEEP_RUNNING", err.Error(), nil))
	case result == nil:
		return common.SendError(c, err)
	case err != nil:
		return c.JSON(http.StatusOK, map[string]any{
			"result": result,
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"result": result})
}

// RunJob queues a scheduled job by name without waiting for it to finish.
func (h *JobHandlers) RunJob(c echo.Context) error {
	if h.scheduler == nil {
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("SCHEDULER_DISABLED", "Scheduler is not running", nil))
	}
	name := c.Param("name")
	if err := h.scheduler.RunNow(name); err != nil {
		if errors.Is(err, background.ErrUnknownJob) {
			return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", err.Error(), nil))
		}
		h.logger.Error("Failed to queue job", zap.String("job", name), zap.Error(err))
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"job": name, "status": "queued"})
}
