package repositories

import (
	"context"
	"encoding/json"

	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, req *models.MaintenanceRequest) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error)
}

type maintenanceRepo struct {
	db DBTX
}

func NewMaintenanceRepo(db DBTX) MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

const maintenanceColumns = `id, tenant_id, property_id, title, description, status,
	COALESCE(assigned_maintainers, '{}'), scheduled_date, estimated_completion_time, original_property_status,
	inspected_by, inspection_date, feedback, COALESCE(inspection_files, '{}'),
	labor_cost, equipment_cost, total_expenses, created_at, updated_at`

func scanMaintenance(row pgx.Row) (*models.MaintenanceRequest, error) {
	m := &models.MaintenanceRequest{}
	var equipment []byte
	err := row.Scan(
		&m.ID, &m.TenantID, &m.PropertyID, &m.Title, &m.Description, &m.Status,
		&m.AssignedMaintainers, &m.ScheduledDate, &m.EstimatedCompletionTime, &m.OriginalPropertyStatus,
		&m.InspectedBy, &m.InspectionDate, &m.Feedback, &m.InspectionFiles,
		&m.LaborCost, &equipment, &m.TotalExpenses, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(equipment) > 0 {
		if err := json.Unmarshal(equipment, &m.EquipmentCost); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func encodeEquipment(items []models.EquipmentLineItem) ([]byte, error) {
	if items == nil {
		items = []models.EquipmentLineItem{}
	}
	return json.Marshal(items)
}

func (r *maintenanceRepo) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	equipment, err := encodeEquipment(req.EquipmentCost)
	if err != nil {
		return storeErr("encode equipment cost", err)
	}
	query := `
		INSERT INTO maintenance_requests (id, tenant_id, property_id, title, description, status,
			labor_cost, equipment_cost, total_expenses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query,
		req.ID, req.TenantID, req.PropertyID, req.Title, req.Description, req.Status,
		req.LaborCost, equipment, req.TotalExpenses,
	)
	return storeErr("create maintenance request", err)
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE id = $1`
	m, err := scanMaintenance(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, loadErr(err, "maintenance request", id)
	}
	return m, nil
}

func (r *maintenanceRepo) Update(ctx context.Context, req *models.MaintenanceRequest) error {
	equipment, err := encodeEquipment(req.EquipmentCost)
	if err != nil {
		return storeErr("encode equipment cost", err)
	}
	query := `
		UPDATE maintenance_requests
		SET title = $1, description = $2, status = $3, assigned_maintainers = $4, scheduled_date = $5,
			estimated_completion_time = $6, original_property_status = $7, inspected_by = $8,
			inspection_date = $9, feedback = $10, inspection_files = $11, labor_cost = $12,
			equipment_cost = $13, total_expenses = $14, updated_at = NOW()
		WHERE id = $15
	`
	_, err = r.db.Exec(ctx, query,
		req.Title, req.Description, req.Status, emptyIfNil(req.AssignedMaintainers), req.ScheduledDate,
		req.EstimatedCompletionTime, req.OriginalPropertyStatus, req.InspectedBy,
		req.InspectionDate, req.Feedback, emptyIfNil(req.InspectionFiles), req.LaborCost,
		equipment, req.TotalExpenses, req.ID,
	)
	return storeErr("update maintenance request", err)
}

func (r *maintenanceRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE property_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, storeErr("list maintenance requests", err)
	}
	defer rows.Close()

	var requests []*models.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, storeErr("scan maintenance request", err)
		}
		requests = append(requests, m)
	}
	return requests, storeErr("list maintenance requests", rows.Err())
}
