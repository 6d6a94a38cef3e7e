package workstations

import (
	"context"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/enums"
)

// Repository defines persistence operations for work stations.
type Repository interface {
	Find(ctx context.Context, id uint) (*models.WorkStation, error)
	List(ctx context.Context) ([]models.WorkStation, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	CountActiveOrders(ctx context.Context, stationID uint) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a work station repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context, id uint) (*models.WorkStation, error) {
	var station models.WorkStation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *repository) List(ctx context.Context) ([]models.WorkStation, error) {
	var stations []models.WorkStation
	err := r.db.WithContext(ctx).Order("id ASC").Find(&stations).Error
	if err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *repository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.WorkStation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CountActiveOrders(ctx context.Context, stationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("work_station_id = ? AND status IN ?", stationID, enums.ActiveOrderStatuses).
		Count(&count).Error
	return count, err
}
