package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

// Repository defines persistence operations for orders, attached parts and
// invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Find(ctx context.Context, id uint) (*models.Order, error)
	FindBare(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	Delete(ctx context.Context, id uint) error

	CustomerExists(ctx context.Context, id uint) (bool, error)
	VehicleOwnedBy(ctx context.Context, vehicleID, customerID uint) (bool, error)
	WorkStationExists(ctx context.Context, id uint) (bool, error)

	FindPart(ctx context.Context, partID uint) (*models.Part, error)
	DecrementPartStock(ctx context.Context, partID uint, quantity int) (bool, error)
	IncrementPartStock(ctx context.Context, partID uint, quantity int) error

	CreateOrderPart(ctx context.Context, orderPart *models.OrderPart) (*models.OrderPart, error)
	FindOrderPart(ctx context.Context, id uint) (*models.OrderPart, error)
	ListOrderParts(ctx context.Context, orderID uint) ([]models.OrderPart, error)
	DeleteOrderPart(ctx context.Context, id uint) error

	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	FindInvoiceByOrder(ctx context.Context, orderID uint) (*models.Invoice, error)

	BuildQueue(ctx context.Context) (*QueueView, error)
}
