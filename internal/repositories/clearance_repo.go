package repositories

import (
	"context"

	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ClearanceRepository interface {
	Create(ctx context.Context, clearance *models.Clearance) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Clearance, error)
	Update(ctx context.Context, clearance *models.Clearance) error
}

type clearanceRepo struct {
	db DBTX
}

func NewClearanceRepo(db DBTX) ClearanceRepository {
	return &clearanceRepo{db: db}
}

const clearanceColumns = `id, tenant_id, property_id, move_out_date, reason, status, approved_by,
	inspection_status, inspection_by, inspection_date, feedback, created_at, updated_at`

func scanClearance(row pgx.Row) (*models.Clearance, error) {
	c := &models.Clearance{}
	err := row.Scan(
		&c.ID, &c.TenantID, &c.PropertyID, &c.MoveOutDate, &c.Reason, &c.Status, &c.ApprovedBy,
		&c.InspectionStatus, &c.InspectionBy, &c.InspectionDate, &c.Feedback, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *clearanceRepo) Create(ctx context.Context, clearance *models.Clearance) error {
	query := `
		INSERT INTO clearances (id, tenant_id, property_id, move_out_date, reason, status,
			inspection_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		clearance.ID, clearance.TenantID, clearance.PropertyID, clearance.MoveOutDate, clearance.Reason,
		clearance.Status, clearance.InspectionStatus,
	)
	return storeErr("create clearance", err)
}

func (r *clearanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Clearance, error) {
	query := `SELECT ` + clearanceColumns + ` FROM clearances WHERE id = $1`
	c, err := scanClearance(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, loadErr(err, "clearance", id)
	}
	return c, nil
}

func (r *clearanceRepo) Update(ctx context.Context, clearance *models.Clearance) error {
	query := `
		UPDATE clearances
		SET move_out_date = $1, reason = $2, status = $3, approved_by = $4, inspection_status = $5,
			inspection_by = $6, inspection_date = $7, feedback = $8, updated_at = NOW()
		WHERE id = $9
	`
	_, err := r.db.Exec(ctx, query,
		clearance.MoveOutDate, clearance.Reason, clearance.Status, clearance.ApprovedBy, clearance.InspectionStatus,
		clearance.InspectionBy, clearance.InspectionDate, clearance.Feedback, clearance.ID,
	)
	return storeErr("update clearance", err)
}
