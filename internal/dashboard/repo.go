package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/enums"
)

const recentOrdersLimit = 6

// Repository runs the aggregate queries behind the dashboard.
type Repository interface {
	CountCustomers(ctx context.Context) (int64, error)
	CountVehicles(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	CountActiveOrders(ctx context.Context) (int64, error)
	CountQueuedOrders(ctx context.Context) (int64, error)
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error)
	PriorityStats(ctx context.Context) (map[string]int64, error)
	ListStations(ctx context.Context) ([]models.WorkStation, error)
	StationBusy(ctx context.Context, stationID uint) (bool, error)
	RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	RecentOrders(ctx context.Context) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dashboard repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}

func (r *repository) CountVehicles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vehicle{}).Count(&count).Error
	return count, err
}

func (r *repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

func (r *repository) CountActiveOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status IN ?", enums.ActiveOrderStatuses).
		Count(&count).Error
	return count, err
}

// CountQueuedOrders counts fresh orders still waiting for a station.
func (r *repository) CountQueuedOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND work_station_id IS NULL", enums.OrderStatusNew).
		Count(&count).Error
	return count, err
}

func (r *repository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status IN ? AND completed_at >= ? AND completed_at < ?",
			[]enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusInvoiced}, from, to).
		Count(&count).Error
	return count, err
}

func (r *repository) PriorityStats(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Priority string
		Count    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("priority, COUNT(*) AS count").
		Where("status IN ?", enums.ActiveOrderStatuses).
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(rows))
	for _, r := range rows {
		stats[r.Priority] = r.Count
	}
	return stats, nil
}

func (r *repository) ListStations(ctx context.Context) ([]models.WorkStation, error) {
	var stations []models.WorkStation
	err := r.db.WithContext(ctx).Order("id ASC").Find(&stations).Error
	return stations, err
}

func (r *repository) StationBusy(ctx context.Context, stationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("work_station_id = ? AND status IN ?", stationID, enums.ActiveOrderStatuses).
		Count(&count).Error
	return count > 0, err
}

// RevenueBetween sums the final cost of invoiced orders completed in the
// window [from, to).
func (r *repository) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND completed_at >= ? AND completed_at < ?",
			enums.OrderStatusInvoiced, from, to).
		Find(&orders).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, order := range orders {
		if order.FinalCost != nil {
			total = total.Add(*order.FinalCost)
		}
	}
	return total, nil
}

func (r *repository) RecentOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Order("created_at DESC").
		Limit(recentOrdersLimit).
		Find(&orders).Error
	return orders, err
}
