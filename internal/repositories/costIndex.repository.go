package repositories

import (
	"context"

	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type CostIndexRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.CostIndex, error)
	Create(ctx context.Context, tx *gorm.DB, index *models.CostIndex) error
}

type costIndexRepository struct {
	log logger.Logger
}

func NewCostIndexRepository() CostIndexRepository {
	return &costIndexRepository{
		log: logger.New("costIndexRepository"),
	}
}

// List returns the whole series ordered by valid_from.
func (r *costIndexRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.CostIndex, error) {
	var indices []*models.CostIndex
	if err := tx.WithContext(ctx).Order("valid_from ASC").Find(&indices).Error; err != nil {
		return nil, r.log.Function("List").Err("failed to list cost indices", err)
	}
	return indices, nil
}

// Create inserts one point. The series is append only, so a second entry
// for the same date is a validation error rather than an update.
func (r *costIndexRepository) Create(ctx context.Context, tx *gorm.DB, index *models.CostIndex) error {
	if err := tx.WithContext(ctx).Create(index).Error; err != nil {
		date := index.ValidFrom.Format("2006-01-02")
		return r.log.Function("Create").
			Err("failed to create cost index", translate(err, "cost index for", date), "validFrom", date)
	}
	return nil
}
