package ports

import (
	"context"

	"accreditations/internal/models"
)

// RecordStore persists accreditation records. Implementations return
// common.ErrNotFound for unknown ids and common.ErrDuplicateKey when a
// national ID is already taken.
type RecordStore interface {
	Create(ctx context.Context, rec *models.Record) error
	Get(ctx context.Context, id int64) (*models.Record, error)
	Update(ctx context.Context, rec *models.Record) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Record, error)
	FindByNationalID(ctx context.Context, nationalID string) (*models.Record, error)

	Count(ctx context.Context) (int64, error)
	CountByCity(ctx context.Context) ([]models.CityCount, error)
	Ages(ctx context.Context) ([]int, error)

	Ping(ctx context.Context) error
}
