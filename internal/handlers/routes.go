package handlers

import (
	"rentflow/internal/metrics"
	"rentflow/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Handlers groups every route handler the API serves.
type Handlers struct {
	Health      *HealthHandlers
	Properties  *PropertyHandlers
	Tenants     *TenantHandlers
	Leases      *LeaseHandlers
	Maintenance *MaintenanceHandlers
	Clearances  *ClearanceHandlers
	Jobs        *JobHandlers
}

// RegisterRoutes mounts the health checks and /metrics at the root and the API under /v1 behind JWT auth.
func RegisterRoutes(e *echo.Echo, h *Handlers, jwtSecret string) {
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/health/ready", h.Health.ReadinessCheck)
	e.GET("/health/live", h.Health.LivenessCheck)
	e.GET("/metrics", metrics.Handler())

	v1 := middleware.VersionRoute(e, middleware.APIVersion)
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret))
	managers := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleManager)

	protected.GET("/properties", h.Properties.ListProperties)
	protected.POST("/properties", h.Properties.CreateProperty, managers)
	protected.GET("/properties/:id", h.Properties.GetProperty)
	protected.PUT("/properties/:id", h.Properties.UpdateProperty, managers)
	protected.GET("/properties/:id/maintenance", h.Maintenance.ListPropertyRequests)

	protected.GET("/tenants", h.Tenants.ListTenants)
	protected.POST("/tenants", h.Tenants.CreateTenant)
	protected.GET("/tenants/:id", h.Tenants.GetTenant)
	protected.PUT("/tenants/:id", h.Tenants.UpdateTenant)

	protected.GET("/leases", h.Leases.ListLeases)
	protected.POST("/leases", h.Leases.CreateLease, managers)
	protected.GET("/leases/:id", h.Leases.GetLease)
	protected.PUT("/leases/:id", h.Leases.UpdateLease, managers)
	protected.DELETE("/leases/:id", h.Leases.DeleteLease, managers)
	protected.GET("/leases/:id/documents", h.Leases.GetLeaseDocuments)

	protected.POST("/maintenance", h.Maintenance.CreateRequest)
	protected.GET("/maintenance/:id", h.Maintenance.GetRequest)
	protected.POST("/maintenance/:id/assign", h.Maintenance.AssignMaintainer, managers)
	protected.POST("/maintenance/:id/inspect", h.Maintenance.InspectMaintenance, managers)
	protected.POST("/maintenance/:id/expense", h.Maintenance.SubmitExpense)

	protected.POST("/clearances", h.Clearances.CreateClearance)
	protected.GET("/clearances/:id", h.Clearances.GetClearance)
	protected.POST("/clearances/:id/approve", h.Clearances.ApproveClearance, managers)
	protected.POST("/clearances/:id/reject", h.Clearances.RejectClearance, managers)
	protected.POST("/clearances/:id/inspect", h.Clearances.InspectClearance, managers)

	admin := protected.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	admin.GET("/sweep", h.Jobs.GetSweep)
	admin.POST("/sweep", h.Jobs.TriggerSweep)
	admin.POST("/jobs/:name/run", h.Jobs.RunJob)
}
