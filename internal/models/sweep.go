package models

import "time"

// SweepResult summarises one lease expiry reconciliation pass.
type SweepResult struct {
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	LeasesExpired      int       `json:"leases_expired"`
	TenantsDeactivated int       `json:"tenants_deactivated"`
	Failures           int       `json:"failures"`
}
