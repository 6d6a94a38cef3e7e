package parts

import (
	"context"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

// Filters describe the inputs supported by the parts list.
type Filters struct {
	Search      string
	InStockOnly bool
}

// Repository defines persistence operations for the parts inventory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, part *models.Part) (*models.Part, error)
	Find(ctx context.Context, id uint) (*models.Part, error)
	FindByCode(ctx context.Context, code string) (*models.Part, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Part, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	Delete(ctx context.Context, id uint) error
	CountOrderReferences(ctx context.Context, partID uint) (int64, error)
	AdjustStock(ctx context.Context, partID uint, change int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a parts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, part *models.Part) (*models.Part, error) {
	if err := r.db.WithContext(ctx).Create(part).Error; err != nil {
		return nil, err
	}
	return part, nil
}

func (r *repository) Find(ctx context.Context, id uint) (*models.Part, error) {
	var part models.Part
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Part, error) {
	var part models.Part
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Part, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.Part{})
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}
	if filters.InStockOnly {
		query = query.Where("stock_quantity > 0")
	}

	var parts []models.Part
	err := query.
		Order("id ASC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *repository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Part{}, id).Error
}

func (r *repository) CountOrderReferences(ctx context.Context, partID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderPart{}).
		Where("part_id = ?", partID).
		Count(&count).Error
	return count, err
}

// AdjustStock applies a signed change, refusing any update that would take
// the stock below zero. The boolean reports whether a row was updated.
func (r *repository) AdjustStock(ctx context.Context, partID uint, change int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE parts
		SET stock_quantity = stock_quantity + ?
		WHERE id = ? AND stock_quantity + ? >= 0
	`, change, partID, change)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
