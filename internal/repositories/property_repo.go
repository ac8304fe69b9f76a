package repositories

import (
	"context"

	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	// UpdateStatusIf moves the property to next only if its stored status is still expected.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next models.PropertyStatus) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Property, error)
}

type propertyRepo struct {
	db DBTX
}

func NewPropertyRepo(db DBTX) PropertyRepository {
	return &propertyRepo{db: db}
}

const propertyColumns = `id, name, address, unit, monthly_rent, status, created_at, updated_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	p := &models.Property{}
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Unit, &p.MonthlyRent, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepo) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (id, name, address, unit, monthly_rent, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, property.ID, property.Name, property.Address, property.Unit, property.MonthlyRent, property.Status)
	return storeErr("create property", err)
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, loadErr(err, "property", id)
	}
	return p, nil
}

// Update writes the descriptive fields only. Status is owned by the lifecycle workflows.
func (r *propertyRepo) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties
		SET name = $1, address = $2, unit = $3, monthly_rent = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, property.Name, property.Address, property.Unit, property.MonthlyRent, property.ID)
	return storeErr("update property", err)
}

func (r *propertyRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next models.PropertyStatus) (bool, error) {
	query := `UPDATE properties SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, next, id, expected)
	if err != nil {
		return false, storeErr("update property status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *propertyRepo) List(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, storeErr("list properties", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, storeErr("scan property", err)
		}
		properties = append(properties, p)
	}
	return properties, storeErr("list properties", rows.Err())
}
