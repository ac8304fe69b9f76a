package jobs

import (
	"context"
	"errors"
	"time"

	"rentflow/internal/caching"
	"rentflow/internal/metrics"
	"rentflow/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const sweepLockName = "lease-sweep"

// ErrSweepRunning is returned when another process holds the sweep lock.
var ErrSweepRunning = errors.New("lease sweep already running")

// LeaseReconciler is the part of the lease service the sweep drives.
type LeaseReconciler interface {
	UpdateLeaseAndTenantStatuses(ctx context.Context) (*models.SweepResult, error)
}

// LeaseSweepJob expires ended leases and deactivates their tenants. Runs are serialised across
// replicas with a Redis lock; the reconciliation itself is idempotent, so a run without the lock
// (cache unavailable) is still safe.
type LeaseSweepJob struct {
	leases  LeaseReconciler
	cache   caching.CacheService
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewLeaseSweepJob creates the sweep. cache may be nil.
func NewLeaseSweepJob(leases LeaseReconciler, cache caching.CacheService, lockTTL time.Duration, logger *zap.Logger) *LeaseSweepJob {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &LeaseSweepJob{
		leases:  leases,
		cache:   cache,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// Run performs one sweep and returns its summary. A partial result is returned together with
// the joined per-lease errors.
func (j *LeaseSweepJob) Run(ctx context.Context) (*models.SweepResult, error) {
	if j.cache != nil {
		token, ok, err := j.cache.AcquireLock(ctx, sweepLockName, j.lockTTL)
		switch {
		case err != nil:
			j.logger.Warn("Sweep lock unavailable, running unlocked", zap.Error(err))
		case !ok:
			j.logger.Info("Lease sweep skipped, another run holds the lock")
			return nil, ErrSweepRunning
		default:
			defer func() {
				if err := j.cache.ReleaseLock(context.WithoutCancel(ctx), sweepLockName, token); err != nil {
					j.logger.Warn("Failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	timer := prometheus.NewTimer(metrics.SweepDuration)
	result, err := j.leases.UpdateLeaseAndTenantStatuses(ctx)
	timer.ObserveDuration()
	if result == nil {
		j.logger.Error("Lease sweep failed", zap.Error(err))
		return nil, err
	}

	metrics.SweepLeasesExpired.Add(float64(result.LeasesExpired))
	metrics.SweepTenantsDeactivated.Add(float64(result.TenantsDeactivated))

	if j.cache != nil {
		if cacheErr := j.cache.SetSweepSummary(ctx, result); cacheErr != nil {
			j.logger.Warn("Failed to store sweep summary", zap.Error(cacheErr))
		}
	}

	fields := []zap.Field{
		zap.Int("leases_expired", result.LeasesExpired),
		zap.Int("tenants_deactivated", result.TenantsDeactivated),
		zap.Int("failures", result.Failures),
		zap.Duration("took", result.FinishedAt.Sub(result.StartedAt)),
	}
	if err != nil {
		j.logger.Error("Lease sweep finished with failures", append(fields, zap.Error(err))...)
		return result, err
	}
	j.logger.Info("Lease sweep completed", fields...)
	return result, nil
}

// RunDailySweep is the scheduled entry point. Errors are logged by Run.
func (j *LeaseSweepJob) RunDailySweep(ctx context.Context) {
	_, _ = j.Run(ctx)
}

// LastSummary returns the summary of the most recent run, or nil if none is recorded.
func (j *LeaseSweepJob) LastSummary(ctx context.Context) (*models.SweepResult, error) {
	if j.cache == nil {
		return nil, nil
	}
	return j.cache.GetSweepSummary(ctx)
}
