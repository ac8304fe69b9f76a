package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Address     string         `json:"address" db:"address"`
	Unit        *string        `json:"unit" db:"unit"`
	MonthlyRent float64        `json:"monthly_rent" db:"monthly_rent"`
	Status      PropertyStatus `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
