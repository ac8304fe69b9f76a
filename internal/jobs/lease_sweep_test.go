package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentflow/internal/metrics"
	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MockLeaseReconciler struct {
	mock.Mock
}

func (m *MockLeaseReconciler) UpdateLeaseAndTenantStatuses(ctx context.Context) (*models.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepResult), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockCacheService) SetProperty(ctx context.Context, property *models.Property, ttl time.Duration) error {
	return m.Called(ctx, property, ttl).Error(0)
}

func (m *MockCacheService) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCacheService) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, name, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCacheService) ReleaseLock(ctx context.Context, name, token string) error {
	return m.Called(ctx, name, token).Error(0)
}

func (m *MockCacheService) SetSweepSummary(ctx context.Context, result *models.SweepResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *MockCacheService) GetSweepSummary(ctx context.Context) (*models.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepResult), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type LeaseSweepJobTestSuite struct {
	suite.Suite
	leases *MockLeaseReconciler
	cache  *MockCacheService
	job    *LeaseSweepJob
	ctx    context.Context
}

func (suite *LeaseSweepJobTestSuite) SetupTest() {
	suite.leases = new(MockLeaseReconciler)
	suite.cache = new(MockCacheService)
	suite.job = NewLeaseSweepJob(suite.leases, suite.cache, time.Minute, zap.NewNop())
	suite.ctx = context.Background()
}

func (suite *LeaseSweepJobTestSuite) TearDownTest() {
	suite.leases.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestLeaseSweepJobTestSuite(t *testing.T) {
	suite.Run(t, new(LeaseSweepJobTestSuite))
}

func summary(expired, deactivated, failures int) *models.SweepResult {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.SweepResult{
		StartedAt:          start,
		FinishedAt:         start.Add(2 * time.Second),
		LeasesExpired:      expired,
		TenantsDeactivated: deactivated,
		Failures:           failures,
	}
}

func (suite *LeaseSweepJobTestSuite) TestRun_HoldsLockAndRecordsSummary() {
	result := summary(3, 2, 0)
	expiredBefore := testutil.ToFloat64(metrics.SweepLeasesExpired)
	deactivatedBefore := testutil.ToFloat64(metrics.SweepTenantsDeactivated)

	suite.cache.On("AcquireLock", mock.Anything, sweepLockName, time.Minute).Return("tok", true, nil).Once()
	suite.leases.On("UpdateLeaseAndTenantStatuses", mock.Anything).Return(result, nil).Once()
	suite.cache.On("SetSweepSummary", mock.Anything, result).Return(nil).Once()
	suite.cache.On("ReleaseLock", mock.Anything, sweepLockName, "tok").Return(nil).Once()

	got, err := suite.job.Run(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), result, got)
	assert.Equal(suite.T(), expiredBefore+3, testutil.ToFloat64(metrics.SweepLeasesExpired))
	assert.Equal(suite.T(), deactivatedBefore+2, testutil.ToFloat64(metrics.SweepTenantsDeactivated))
}

func (suite *LeaseSweepJobTestSuite) TestRun_SkipsWhenLockHeld() {
	suite.cache.On("AcquireLock", mock.Anything, sweepLockName, time.Minute).Return("", false, nil).Once()

	got, err := suite.job.Run(suite.ctx)
	assert.ErrorIs(suite.T(), err, ErrSweepRunning)
	assert.Nil(suite.T(), got)
	suite.leases.AssertNotCalled(suite.T(), "UpdateLeaseAndTenantStatuses", mock.Anything)
}

func (suite *LeaseSweepJobTestSuite) TestRun_LockErrorRunsUnlocked() {
	result := summary(0, 0, 0)
	suite.cache.On("AcquireLock", mock.Anything, sweepLockName, time.Minute).Return("", false, errors.New("redis down")).Once()
	suite.leases.On("UpdateLeaseAndTenantStatuses", mock.Anything).Return(result, nil).Once()
	suite.cache.On("SetSweepSummary", mock.Anything, result).Return(errors.New("redis down")).Once()

	got, err := suite.job.Run(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), result, got)
	suite.cache.AssertNotCalled(suite.T(), "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LeaseSweepJobTestSuite) TestRun_PartialFailureKeepsSummary() {
	result := summary(2, 1, 1)
	sweepErr := errors.New("tenant update failed")
	suite.cache.On("AcquireLock", mock.Anything, sweepLockName, time.Minute).Return("tok", true, nil).Once()
	suite.leases.On("UpdateLeaseAndTenantStatuses", mock.Anything).Return(result, sweepErr).Once()
	suite.cache.On("SetSweepSummary", mock.Anything, result).Return(nil).Once()
	suite.cache.On("ReleaseLock", mock.Anything, sweepLockName, "tok").Return(nil).Once()

	got, err := suite.job.Run(suite.ctx)
	assert.ErrorIs(suite.T(), err, sweepErr)
	assert.Equal(suite.T(), 1, got.Failures)
}

func (suite *LeaseSweepJobTestSuite) TestRun_ListingFailureReleasesLock() {
	suite.cache.On("AcquireLock", mock.Anything, sweepLockName, time.Minute).Return("tok", true, nil).Once()
	suite.leases.On("UpdateLeaseAndTenantStatuses", mock.Anything).Return(nil, errors.New("db gone")).Once()
	suite.cache.On("ReleaseLock", mock.Anything, sweepLockName, "tok").Return(nil).Once()

	got, err := suite.job.Run(suite.ctx)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), got)
}

func (suite *LeaseSweepJobTestSuite) TestLastSummary() {
	result := summary(1, 1, 0)
	suite.cache.On("GetSweepSummary", mock.Anything).Return(result, nil).Once()

	got, err := suite.job.LastSummary(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), result, got)
}

func TestLeaseSweepJob_WithoutCache(t *testing.T) {
	leases := new(MockLeaseReconciler)
	leases.On("UpdateLeaseAndTenantStatuses", mock.Anything).Return(summary(1, 1, 0), nil).Once()
	job := NewLeaseSweepJob(leases, nil, 0, zap.NewNop())

	job.RunDailySweep(context.Background())

	last, err := job.LastSummary(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, last)
	assert.Equal(t, 10*time.Minute, job.lockTTL)
	leases.AssertExpectations(t)
}
