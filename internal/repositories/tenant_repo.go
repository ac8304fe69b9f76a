package repositories

import (
	"context"

	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next models.TenantStatus) (bool, error)
	SetLease(ctx context.Context, id uuid.UUID, leaseID *uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DBTX
}

func NewTenantRepo(db DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, email, phone, property_id, lease_id, status, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.PropertyID, &t.LeaseID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, email, phone, property_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.Email, tenant.Phone, tenant.PropertyID, tenant.Status)
	return storeErr("create tenant", err)
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, loadErr(err, "tenant", id)
	}
	return t, nil
}

// Update writes profile fields only; status and lease link change through the lifecycle.
func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, email = $2, phone = $3, property_id = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, tenant.Name, tenant.Email, tenant.Phone, tenant.PropertyID, tenant.ID)
	return storeErr("update tenant", err)
}

func (r *tenantRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next models.TenantStatus) (bool, error) {
	query := `UPDATE tenants SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, next, id, expected)
	if err != nil {
		return false, storeErr("update tenant status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *tenantRepo) SetLease(ctx context.Context, id uuid.UUID, leaseID *uuid.UUID) error {
	query := `UPDATE tenants SET lease_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, leaseID, id)
	return storeErr("link tenant lease", err)
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storeErr("list tenants", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, storeErr("scan tenant", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, storeErr("list tenants", rows.Err())
}
