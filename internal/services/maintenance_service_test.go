package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rentflow/internal/common"
	"rentflow/internal/events"
	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MaintenanceServiceTestSuite struct {
	suite.Suite
	store   *memStore
	docs    *MockDocumentStore
	service *maintenanceService
	now     time.Time
	ctx     context.Context
}

func (suite *MaintenanceServiceTestSuite) SetupTest() {
	suite.store = newMemStore()
	suite.docs = &MockDocumentStore{}
	suite.docs.Test(suite.T())
	suite.now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	suite.ctx = context.Background()

	properties := fakePropertyRepo{suite.store}
	tenants := fakeTenantRepo{suite.store}
	status := NewStatusService(properties, tenants, nil, nil, true, zap.NewNop())
	suite.service = NewMaintenanceService(
		fakeMaintenanceRepo{suite.store}, properties, tenants, status, nil, suite.docs, events.NoopPublisher{}, zap.NewNop(),
	).(*maintenanceService)
	suite.service.now = func() time.Time { return suite.now }
}

func (suite *MaintenanceServiceTestSuite) TearDownTest() {
	suite.docs.AssertExpectations(suite.T())
}

func TestMaintenanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaintenanceServiceTestSuite))
}

func (suite *MaintenanceServiceTestSuite) openRequest(status models.PropertyStatus) (models.Property, *models.MaintenanceRequest) {
	p := suite.store.addProperty(status)
	t := suite.store.addTenant(models.TenantStatusActive)
	m, err := suite.service.CreateRequest(suite.ctx, &CreateMaintenanceRequest{
		TenantID:   t.ID,
		PropertyID: p.ID,
		Title:      "Leaking boiler",
	})
	require.NoError(suite.T(), err)
	return p, m
}

func (suite *MaintenanceServiceTestSuite) assign(id uuid.UUID) (*models.MaintenanceRequest, error) {
	scheduled := suite.now.Add(48 * time.Hour)
	hours := 6.0
	return suite.service.AssignMaintainer(suite.ctx, id, &AssignMaintainerRequest{
		MaintainerIDs:           []uuid.UUID{uuid.New()},
		ScheduledDate:           &scheduled,
		EstimatedCompletionTime: &hours,
	})
}

func (suite *MaintenanceServiceTestSuite) TestCreateRequest_StartsPending() {
	_, m := suite.openRequest(models.PropertyStatusReserved)
	assert.Equal(suite.T(), models.MaintenanceStatusPending, m.Status)
	assert.Len(suite.T(), suite.store.maintenance, 1)
}

func (suite *MaintenanceServiceTestSuite) TestCreateRequest_UnknownProperty() {
	t := suite.store.addTenant(models.TenantStatusActive)
	_, err := suite.service.CreateRequest(suite.ctx, &CreateMaintenanceRequest{
		TenantID:   t.ID,
		PropertyID: uuid.New(),
		Title:      "Broken window",
	})
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *MaintenanceServiceTestSuite) TestListForProperty() {
	p, m := suite.openRequest(models.PropertyStatusOpen)
	suite.openRequest(models.PropertyStatusClosed)

	requests, err := suite.service.ListForProperty(suite.ctx, p.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), requests, 1)
	assert.Equal(suite.T(), m.ID, requests[0].ID)

	_, err = suite.service.ListForProperty(suite.ctx, uuid.New())
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *MaintenanceServiceTestSuite) TestAssignThenInspect_RestoresOriginalStatus() {
	p, m := suite.openRequest(models.PropertyStatusClosed)

	assigned, err := suite.assign(m.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MaintenanceStatusInProgress, assigned.Status)
	require.NotNil(suite.T(), assigned.OriginalPropertyStatus)
	assert.Equal(suite.T(), models.PropertyStatusClosed, *assigned.OriginalPropertyStatus)
	assert.Equal(suite.T(), models.PropertyStatusUnderMaintenance, suite.store.propertyStatus(p.ID))

	feedback := "Boiler replaced"
	inspected, err := suite.service.InspectMaintenance(suite.ctx, m.ID, &InspectMaintenanceRequest{
		InspectedBy: uuid.New(),
		Feedback:    &feedback,
	}, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MaintenanceStatusInspected, inspected.Status)
	require.NotNil(suite.T(), inspected.InspectionDate)
	assert.Equal(suite.T(), suite.now, *inspected.InspectionDate)
	assert.Equal(suite.T(), models.PropertyStatusClosed, suite.store.propertyStatus(p.ID))
}

func (suite *MaintenanceServiceTestSuite) TestAssign_SecondAssignmentKeepsSnapshot() {
	p, m := suite.openRequest(models.PropertyStatusReserved)

	_, err := suite.assign(m.ID)
	require.NoError(suite.T(), err)
	again, err := suite.assign(m.ID)
	require.NoError(suite.T(), err)

	require.NotNil(suite.T(), again.OriginalPropertyStatus)
	assert.Equal(suite.T(), models.PropertyStatusReserved, *again.OriginalPropertyStatus)
	assert.Equal(suite.T(), models.PropertyStatusUnderMaintenance, suite.store.propertyStatus(p.ID))
}

func (suite *MaintenanceServiceTestSuite) TestAssign_Validation() {
	_, m := suite.openRequest(models.PropertyStatusOpen)

	past := suite.now.Add(-time.Hour)
	_, err := suite.service.AssignMaintainer(suite.ctx, m.ID, &AssignMaintainerRequest{
		MaintainerIDs: []uuid.UUID{uuid.New()},
		ScheduledDate: &past,
	})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)

	zero := 0.0
	_, err = suite.service.AssignMaintainer(suite.ctx, m.ID, &AssignMaintainerRequest{
		MaintainerIDs:           []uuid.UUID{uuid.New()},
		EstimatedCompletionTime: &zero,
	})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)

	_, err = suite.service.AssignMaintainer(suite.ctx, m.ID, &AssignMaintainerRequest{})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)

	assert.Zero(suite.T(), suite.store.callCount("properties.UpdateStatusIf"))
}

func (suite *MaintenanceServiceTestSuite) TestAssign_RequestSaveFailureRevertsProperty() {
	p, m := suite.openRequest(models.PropertyStatusOpen)
	suite.store.failOn("maintenance.Update", common.NewStoreError("update maintenance request", errors.New("deadlock")))

	_, err := suite.assign(m.ID)
	assert.ErrorIs(suite.T(), err, common.ErrStore)
	assert.Equal(suite.T(), models.PropertyStatusOpen, suite.store.propertyStatus(p.ID))
	assert.Equal(suite.T(), models.MaintenanceStatusPending, suite.store.maintenance[m.ID].Status)
}

func (suite *MaintenanceServiceTestSuite) TestInspect_SaveFailureFallsBackToOpen() {
	p, m := suite.openRequest(models.PropertyStatusClosed)
	_, err := suite.assign(m.ID)
	require.NoError(suite.T(), err)

	suite.store.failOn("maintenance.Update", common.NewStoreError("update maintenance request", errors.New("deadlock")))
	_, err = suite.service.InspectMaintenance(suite.ctx, m.ID, &InspectMaintenanceRequest{InspectedBy: uuid.New()}, nil)

	assert.ErrorIs(suite.T(), err, common.ErrStore)
	assert.Equal(suite.T(), models.PropertyStatusOpen, suite.store.propertyStatus(p.ID))
}

func (suite *MaintenanceServiceTestSuite) TestInspect_UnassignedRequestLeavesPropertyAlone() {
	p, m := suite.openRequest(models.PropertyStatusReserved)

	inspected, err := suite.service.InspectMaintenance(suite.ctx, m.ID, &InspectMaintenanceRequest{InspectedBy: uuid.New()}, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MaintenanceStatusInspected, inspected.Status)
	assert.Equal(suite.T(), models.PropertyStatusReserved, suite.store.propertyStatus(p.ID))
	assert.Zero(suite.T(), suite.store.callCount("properties.UpdateStatusIf"))
}

func (suite *MaintenanceServiceTestSuite) TestInspect_SecondInspectionDoesNotRestoreAgain() {
	p, m := suite.openRequest(models.PropertyStatusClosed)
	_, err := suite.assign(m.ID)
	require.NoError(suite.T(), err)
	_, err = suite.service.InspectMaintenance(suite.ctx, m.ID, &InspectMaintenanceRequest{InspectedBy: uuid.New()}, nil)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), models.PropertyStatusClosed, suite.store.propertyStatus(p.ID))

	suite.store.mu.Lock()
	prop := suite.store.properties[p.ID]
	prop.Status = models.PropertyStatusReserved
	suite.store.properties[p.ID] = prop
	suite.store.mu.Unlock()

	_, err = suite.service.InspectMaintenance(suite.ctx, m.ID, &InspectMaintenanceRequest{InspectedBy: uuid.New()}, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.PropertyStatusReserved, suite.store.propertyStatus(p.ID))
}

func (suite *MaintenanceServiceTestSuite) TestInspect_AttachesFiles() {
	_, m := suite.openRequest(models.PropertyStatusOpen)
	_, err := suite.assign(m.ID)
	require.NoError(suite.T(), err)
	photo := Upload{Name: "after.jpg", ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("jpeg")}
	suite.docs.On("Put", mock.Anything, "maintenance/"+m.ID.String(), photo).Return("maintenance/after.jpg", nil).Once()

	inspected, err := suite.service.InspectMaintenance(suite.ctx, m.ID, &InspectMaintenanceRequest{InspectedBy: uuid.New()}, []Upload{photo})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"maintenance/after.jpg"}, inspected.InspectionFiles)
	assert.Equal(suite.T(), []string{"maintenance/after.jpg"}, suite.store.maintenance[m.ID].InspectionFiles)
}

func (suite *MaintenanceServiceTestSuite) TestSubmitExpense_RecomputesTotals() {
	_, m := suite.openRequest(models.PropertyStatusOpen)

	result, err := suite.service.SubmitMaintenanceExpense(suite.ctx, m.ID, &MaintenanceExpenseRequest{
		LaborCost: 50,
		EquipmentCost: []ExpenseLine{
			{Name: "valve", Quantity: 3, PricePerUnit: 10},
			{Name: "tape", Quantity: 1, PricePerUnit: 5},
		},
	})
	require.NoError(suite.T(), err)

	require.Len(suite.T(), result.EquipmentCost, 2)
	assert.InDelta(suite.T(), 30, result.EquipmentCost[0].Total, 1e-9)
	assert.InDelta(suite.T(), 5, result.EquipmentCost[1].Total, 1e-9)
	assert.InDelta(suite.T(), 85, result.TotalExpenses, 1e-9)
	assert.Equal(suite.T(), models.MaintenanceStatusCompleted, result.Status)
}

func (suite *MaintenanceServiceTestSuite) TestSubmitExpense_RejectsNegativeQuantity() {
	_, m := suite.openRequest(models.PropertyStatusOpen)

	_, err := suite.service.SubmitMaintenanceExpense(suite.ctx, m.ID, &MaintenanceExpenseRequest{
		EquipmentCost: []ExpenseLine{{Name: "valve", Quantity: -1, PricePerUnit: 15}},
	})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Equal(suite.T(), models.MaintenanceStatusPending, suite.store.maintenance[m.ID].Status)
}

func TestSnapshotStatus(t *testing.T) {
	reserved := models.PropertyStatusReserved
	under := models.PropertyStatusUnderMaintenance

	assert.Equal(t, models.PropertyStatusClosed, snapshotStatus(models.PropertyStatusClosed, nil))
	assert.Equal(t, models.PropertyStatusReserved, snapshotStatus(models.PropertyStatusUnderMaintenance, &reserved))
	assert.Equal(t, models.PropertyStatusOpen, snapshotStatus(models.PropertyStatusUnderMaintenance, &under))
	assert.Equal(t, models.PropertyStatusOpen, snapshotStatus(models.PropertyStatusUnderMaintenance, nil))
}
