package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/enums"
	pkgerrors "github.com/VadoVates/autoservice/pkg/errors"
	"github.com/VadoVates/autoservice/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the order lifecycle: status progression with timestamp side
// effects, transactional part attach/detach, and invoicing.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error)
	Update(ctx context.Context, id uint, patch Patch) (*models.Order, error)
	Delete(ctx context.Context, id uint) error

	AttachPart(ctx context.Context, orderID uint, input AttachPartInput) (*models.OrderPart, error)
	ListParts(ctx context.Context, orderID uint) ([]models.OrderPart, error)
	DetachPart(ctx context.Context, orderID, orderPartID uint) error

	GenerateInvoice(ctx context.Context, orderID uint, input InvoiceInput) (*InvoiceData, error)
	GetInvoice(ctx context.Context, orderID uint) (*models.Invoice, error)

	Queue(ctx context.Context) (*QueueView, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds the order lifecycle service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.Description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if input.Priority == "" {
		input.Priority = enums.OrderPriorityNormal
	}
	if !input.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	exists, err := s.repo.CustomerExists(ctx, input.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	owned, err := s.repo.VehicleOwnedBy(ctx, input.VehicleID, input.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vehicle")
	}
	if !owned {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found for customer")
	}

	if input.WorkStationID != nil {
		stationExists, err := s.repo.WorkStationExists(ctx, *input.WorkStationID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check work station")
		}
		if !stationExists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "work station not found")
		}
	}

	order := &models.Order{
		CustomerID:    input.CustomerID,
		VehicleID:     input.VehicleID,
		WorkStationID: input.WorkStationID,
		Description:   input.Description,
		Priority:      input.Priority,
		Status:        enums.OrderStatusNew,
		EstimatedCost: input.EstimatedCost,
	}
	if _, err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return s.Get(ctx, order.ID)
}

func (s *service) Get(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// Update applies a patch field by field. Status side effects fire on the
// value written: in_progress stamps started_at once, completed stamps
// completed_at once, invoiced requires the order to currently be completed.
// An invoiced order accepts no further status writes.
func (s *service) Update(ctx context.Context, id uint, patch Patch) (*models.Order, error) {
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}
	if patch.WorkStationID != nil && *patch.WorkStationID != 0 {
		stationExists, err := s.repo.WorkStationExists(ctx, *patch.WorkStationID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check work station")
		}
		if !stationExists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "work station not found")
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindBare(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", id))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		updates := map[string]any{}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Priority != nil {
			updates["priority"] = *patch.Priority
		}
		if patch.WorkStationID != nil {
			if *patch.WorkStationID == 0 {
				updates["work_station_id"] = nil
			} else {
				updates["work_station_id"] = *patch.WorkStationID
			}
		}
		if patch.EstimatedCost != nil {
			updates["estimated_cost"] = *patch.EstimatedCost
		}
		if patch.FinalCost != nil {
			updates["final_cost"] = *patch.FinalCost
		}

		if patch.Status != nil {
			if order.Status.IsTerminal() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already invoiced")
			}
			newStatus := *patch.Status
			updates["status"] = newStatus

			switch newStatus {
			case enums.OrderStatusInProgress:
				if order.StartedAt == nil {
					updates["started_at"] = s.now()
				}
			case enums.OrderStatusCompleted:
				if order.CompletedAt == nil {
					updates["completed_at"] = s.now()
				}
			case enums.OrderStatusInvoiced:
				if order.Status != enums.OrderStatusCompleted {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot invoice an order that is not completed")
				}
				if patch.FinalCost == nil && order.FinalCost == nil {
					updates["final_cost"] = order.EstimatedCost
				}
			}
		}

		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes an order together with its attached parts, restoring each
// part's stock. Invoiced orders are kept for the billing record.
func (s *service) Delete(ctx context.Context, id uint) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindBare(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", id))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete an invoiced order")
		}

		attached, err := repo.ListOrderParts(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order parts")
		}
		for _, orderPart := range attached {
			if err := repo.IncrementPartStock(ctx, orderPart.PartID, orderPart.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore part stock")
			}
			if err := repo.DeleteOrderPart(ctx, orderPart.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order part")
			}
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

// AttachPart creates an OrderPart and decrements the part's stock in one
// transaction. The decrement is a conditional update, so two competing
// attaches can never drive stock negative.
func (s *service) AttachPart(ctx context.Context, orderID uint, input AttachPartInput) (*models.OrderPart, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var created *models.OrderPart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindBare(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", orderID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot modify an invoiced order")
		}

		part, err := repo.FindPart(ctx, input.PartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("part %d not found", input.PartID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load part")
		}

		decremented, err := repo.DecrementPartStock(ctx, part.ID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !decremented {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{"part_id": part.ID, "requested": input.Quantity, "available": part.StockQuantity})
		}

		unitPrice := part.Price
		if input.UnitPriceOverride != nil {
			unitPrice = *input.UnitPriceOverride
		}

		created, err = repo.CreateOrderPart(ctx, &models.OrderPart{
			OrderID:   orderID,
			PartID:    part.ID,
			Quantity:  input.Quantity,
			UnitPrice: unitPrice,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order part")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ListParts(ctx context.Context, orderID uint) ([]models.OrderPart, error) {
	if _, err := s.Get(ctx, orderID); err != nil {
		return nil, err
	}
	parts, err := s.repo.ListOrderParts(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order parts")
	}
	return parts, nil
}

// DetachPart restores the part's stock and removes the OrderPart record in
// one transaction.
func (s *service) DetachPart(ctx context.Context, orderID, orderPartID uint) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		orderPart, err := repo.FindOrderPart(ctx, orderPartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order part %d not found", orderPartID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order part")
		}
		if orderPart.OrderID != orderID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order part does not belong to order")
		}

		if err := repo.IncrementPartStock(ctx, orderPart.PartID, orderPart.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore part stock")
		}
		if err := repo.DeleteOrderPart(ctx, orderPart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order part")
		}
		return nil
	})
}

// GenerateInvoice computes the final cost (labor plus attached parts at
// their snapshot prices), writes it together with status=invoiced, and
// creates the invoice row. Only a completed order can be invoiced.
func (s *service) GenerateInvoice(ctx context.Context, orderID uint, input InvoiceInput) (*InvoiceData, error) {
	if input.LaborCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "labor cost cannot be negative")
	}

	var data *InvoiceData
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.Find(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", orderID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot invoice an order that is not completed")
		}

		attached, err := repo.ListOrderParts(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order parts")
		}

		total := input.LaborCost
		for _, orderPart := range attached {
			total = total.Add(orderPart.Total())
		}

		issuedAt := s.now()
		invoice, err := repo.CreateInvoice(ctx, &models.Invoice{
			OrderID:       orderID,
			InvoiceNumber: invoiceNumber(issuedAt, orderID),
			IssueDate:     issuedAt,
			TotalAmount:   total,
			Notes:         input.Notes,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}

		updates := map[string]any{
			"status":     enums.OrderStatusInvoiced,
			"final_cost": total,
		}
		if err := repo.Update(ctx, orderID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		order.Status = enums.OrderStatusInvoiced
		finalCost := total
		order.FinalCost = &finalCost

		data = &InvoiceData{
			Invoice:   *invoice,
			Order:     *order,
			Parts:     attached,
			LaborCost: input.LaborCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *service) GetInvoice(ctx context.Context, orderID uint) (*models.Invoice, error) {
	invoice, err := s.repo.FindInvoiceByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no invoice for order %d", orderID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) Queue(ctx context.Context) (*QueueView, error) {
	view, err := s.repo.BuildQueue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build queue")
	}
	return view, nil
}

func invoiceNumber(issuedAt time.Time, orderID uint) string {
	return fmt.Sprintf("INV-%d-%d", issuedAt.Year(), orderID)
}
