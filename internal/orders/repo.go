package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/enums"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

// priorityRank sorts urgent before high before normal in both Postgres and
// sqlite, where a plain ORDER BY priority DESC would sort alphabetically.
const priorityRank = "CASE priority WHEN 'urgent' THEN 3 WHEN 'high' THEN 2 ELSE 1 END"

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) Find(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Preload("WorkStation").
		Preload("Parts.Part").
		Preload("Invoice").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindBare(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle")

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}

	var orders []models.Order
	err := query.
		Order(priorityRank + " DESC").
		Order("created_at ASC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func (r *repository) CustomerExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) VehicleOwnedBy(ctx context.Context, vehicleID, customerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("id = ? AND customer_id = ?", vehicleID, customerID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) WorkStationExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WorkStation{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) FindPart(ctx context.Context, partID uint) (*models.Part, error) {
	var part models.Part
	err := r.db.WithContext(ctx).Where("id = ?", partID).First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// DecrementPartStock performs the conditional decrement that keeps stock
// non-negative under concurrent attaches. The boolean reports whether the
// row was updated; false means insufficient stock.
func (r *repository) DecrementPartStock(ctx context.Context, partID uint, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE parts
		SET stock_quantity = stock_quantity - ?
		WHERE id = ? AND stock_quantity >= ?
	`, quantity, partID, quantity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) IncrementPartStock(ctx context.Context, partID uint, quantity int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE parts
		SET stock_quantity = stock_quantity + ?
		WHERE id = ?
	`, quantity, partID).Error
}

func (r *repository) CreateOrderPart(ctx context.Context, orderPart *models.OrderPart) (*models.OrderPart, error) {
	if err := r.db.WithContext(ctx).Create(orderPart).Error; err != nil {
		return nil, err
	}
	return orderPart, nil
}

func (r *repository) FindOrderPart(ctx context.Context, id uint) (*models.OrderPart, error) {
	var orderPart models.OrderPart
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&orderPart).Error
	if err != nil {
		return nil, err
	}
	return &orderPart, nil
}

func (r *repository) ListOrderParts(ctx context.Context, orderID uint) ([]models.OrderPart, error) {
	var parts []models.OrderPart
	err := r.db.WithContext(ctx).
		Preload("Part").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *repository) DeleteOrderPart(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.OrderPart{}, id).Error
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) FindInvoiceByOrder(ctx context.Context, orderID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) BuildQueue(ctx context.Context) (*QueueView, error) {
	var stations []models.WorkStation
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&stations).Error
	if err != nil {
		return nil, err
	}

	busyStatuses := []enums.OrderStatus{enums.OrderStatusInProgress, enums.OrderStatusWaitingForParts}

	view := &QueueView{Stations: make([]StationBucket, 0, len(stations))}
	for _, station := range stations {
		var stationOrders []models.Order
		err := r.db.WithContext(ctx).
			Preload("Customer").
			Preload("Vehicle").
			Where("work_station_id = ? AND status IN ?", station.ID, busyStatuses).
			Order(priorityRank + " DESC").
			Order("created_at ASC").
			Find(&stationOrders).Error
		if err != nil {
			return nil, err
		}
		view.Stations = append(view.Stations, StationBucket{Station: station, Orders: stationOrders})
	}

	err = r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Where("work_station_id IS NULL AND status = ?", enums.OrderStatusNew).
		Order(priorityRank + " DESC").
		Order("created_at ASC").
		Find(&view.Waiting).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Where("work_station_id IS NULL AND status = ?", enums.OrderStatusWaitingForParts).
		Order(priorityRank + " DESC").
		Order("created_at ASC").
		Find(&view.WaitingForParts).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Where("status = ?", enums.OrderStatusCompleted).
		Order("completed_at DESC").
		Find(&view.Completed).Error
	if err != nil {
		return nil, err
	}

	return view, nil
}
