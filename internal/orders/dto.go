package orders

import (
	"github.com/shopspring/decimal"

	"github.com/VadoVates/autoservice/pkg/db/models"
	"github.com/VadoVates/autoservice/pkg/enums"
)

// CreateOrderInput carries the fields accepted when opening a new order.
// Status is not accepted: every order starts as new.
type CreateOrderInput struct {
	CustomerID    uint
	VehicleID     uint
	WorkStationID *uint
	Description   string
	Priority      enums.OrderPriority
	EstimatedCost decimal.Decimal
}

// Patch enumerates the fields that are legally mutable on an order. Nil
// means "leave unchanged"; there is no attribute-name-driven update path.
type Patch struct {
	Description   *string
	Priority      *enums.OrderPriority
	Status        *enums.OrderStatus
	WorkStationID *uint
	EstimatedCost *decimal.Decimal
	FinalCost     *decimal.Decimal
}

// ListFilters describe the inputs supported by the orders list.
type ListFilters struct {
	Status     *enums.OrderStatus
	CustomerID *uint
}

// AttachPartInput carries an attach request. UnitPriceOverride, when set,
// replaces the part's current price as the snapshot.
type AttachPartInput struct {
	PartID            uint
	Quantity          int
	UnitPriceOverride *decimal.Decimal
}

// InvoiceInput carries the caller-supplied invoicing fields.
type InvoiceInput struct {
	LaborCost decimal.Decimal
	Notes     *string
}

// InvoiceData bundles everything the document renderer needs.
type InvoiceData struct {
	Invoice   models.Invoice     `json:"invoice"`
	Order     models.Order       `json:"order"`
	Parts     []models.OrderPart `json:"parts"`
	LaborCost decimal.Decimal    `json:"labor_cost"`
}

// StationBucket groups the orders currently occupying one work station.
type StationBucket struct {
	Station models.WorkStation `json:"station"`
	Orders  []models.Order     `json:"orders"`
}

// QueueView is the workshop floor snapshot: per-station buckets plus the
// unassigned waiting lists and the completed pile.
type QueueView struct {
	Stations        []StationBucket `json:"stations"`
	Waiting         []models.Order  `json:"waiting"`
	WaitingForParts []models.Order  `json:"waiting_for_parts"`
	Completed       []models.Order  `json:"completed"`
}
