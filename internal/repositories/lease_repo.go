package repositories

import (
	"context"
	"time"

	"rentflow/internal/common"
	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeaseRepository interface {
	Create(ctx context.Context, lease *models.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	// Update fails with a conflict if the stored status changed since lease was read.
	Update(ctx context.Context, lease *models.Lease) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListExpirable returns leases whose end is at or before now and that are not yet expired.
	ListExpirable(ctx context.Context, now time.Time) ([]*models.Lease, error)
	// MarkExpired reports false when the lease was already expired or is gone.
	MarkExpired(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Lease, error)
}

type leaseRepo struct {
	db DBTX
}

func NewLeaseRepo(db DBTX) LeaseRepository {
	return &leaseRepo{db: db}
}

const leaseColumns = `id, tenant_id, property_id, lease_start, lease_end, monthly_rent, security_deposit,
	status, COALESCE(documents, '{}'), created_by, created_at, updated_at`

func scanLease(row pgx.Row) (*models.Lease, error) {
	l := &models.Lease{}
	err := row.Scan(
		&l.ID, &l.TenantID, &l.PropertyID, &l.LeaseStart, &l.LeaseEnd, &l.MonthlyRent, &l.SecurityDeposit,
		&l.Status, &l.Documents, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *leaseRepo) Create(ctx context.Context, lease *models.Lease) error {
	query := `
		INSERT INTO leases (id, tenant_id, property_id, lease_start, lease_end, monthly_rent, security_deposit,
			status, documents, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		lease.ID, lease.TenantID, lease.PropertyID, lease.LeaseStart, lease.LeaseEnd, lease.MonthlyRent,
		lease.SecurityDeposit, lease.Status, emptyIfNil(lease.Documents), lease.CreatedBy,
	)
	return storeErr("create lease", err)
}

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1`
	l, err := scanLease(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, loadErr(err, "lease", id)
	}
	return l, nil
}

// Update writes every field except status, and only while the stored status still matches lease.Status.
// Expiry goes through MarkExpired.
func (r *leaseRepo) Update(ctx context.Context, lease *models.Lease) error {
	query := `
		UPDATE leases
		SET lease_start = $1, lease_end = $2, monthly_rent = $3, security_deposit = $4,
			documents = $5, updated_at = NOW()
		WHERE id = $6 AND status = $7
	`
	tag, err := r.db.Exec(ctx, query,
		lease.LeaseStart, lease.LeaseEnd, lease.MonthlyRent, lease.SecurityDeposit,
		emptyIfNil(lease.Documents), lease.ID, lease.Status,
	)
	if err != nil {
		return storeErr("update lease", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NewConflictError("lease %s is no longer %s", lease.ID, lease.Status)
	}
	return nil
}

func (r *leaseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM leases WHERE id = $1`, id)
	return storeErr("delete lease", err)
}

func (r *leaseRepo) ListExpirable(ctx context.Context, now time.Time) ([]*models.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE lease_end <= $1 AND status <> $2 ORDER BY lease_end`
	rows, err := r.db.Query(ctx, query, now, models.LeaseStatusExpired)
	if err != nil {
		return nil, storeErr("list expirable leases", err)
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepo) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE leases SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $1`
	tag, err := r.db.Exec(ctx, query, models.LeaseStatusExpired, id)
	if err != nil {
		return false, storeErr("expire lease", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *leaseRepo) List(ctx context.Context, limit, offset int) ([]*models.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storeErr("list leases", err)
	}
	defer rows.Close()
	return collectLeases(rows)
}

func collectLeases(rows pgx.Rows) ([]*models.Lease, error) {
	var leases []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, storeErr("scan lease", err)
		}
		leases = append(leases, l)
	}
	return leases, storeErr("list leases", rows.Err())
}
