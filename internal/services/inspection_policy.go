package services

import "rentflow/internal/models"

// MaintenanceInspectionOutcome tells the maintenance workflow what to do with the property on inspection.
type MaintenanceInspectionOutcome struct {
	RestoreProperty bool
	RestoreTo       models.PropertyStatus
	// FallbackTo is applied if recording the inspection fails after the property was restored.
	FallbackTo models.PropertyStatus
}

// InspectionPolicy is the single place that decides what an inspection result means.
// Feedback is free text today; a pass/fail verdict would be read here.
type InspectionPolicy interface {
	Maintenance(req *models.MaintenanceRequest, feedback *string) MaintenanceInspectionOutcome
	Clearance(clearance *models.Clearance, feedback *string) models.InspectionStatus
}

// DefaultInspectionPolicy restores the property on every inspection of an assigned request and passes every
// clearance inspection. A request that was never assigned captured no status, so the property is left alone.
type DefaultInspectionPolicy struct{}

func (DefaultInspectionPolicy) Maintenance(req *models.MaintenanceRequest, _ *string) MaintenanceInspectionOutcome {
	snapshot := req.OriginalPropertyStatus
	if req.Status != models.MaintenanceStatusInProgress || snapshot == nil || !snapshot.Valid() {
		return MaintenanceInspectionOutcome{}
	}
	return MaintenanceInspectionOutcome{
		RestoreProperty: true,
		RestoreTo:       *snapshot,
		FallbackTo:      models.PropertyStatusOpen,
	}
}

func (DefaultInspectionPolicy) Clearance(_ *models.Clearance, _ *string) models.InspectionStatus {
	return models.InspectionStatusPassed
}
