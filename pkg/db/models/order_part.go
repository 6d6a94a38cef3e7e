package models

import "github.com/shopspring/decimal"

// OrderPart links a Part to an Order. UnitPrice is a snapshot of the part
// price at attach time and never changes afterwards.
type OrderPart struct {
	ID        uint            `gorm:"column:id;primaryKey" json:"id"`
	OrderID   uint            `gorm:"column:order_id;not null" json:"order_id"`
	PartID    uint            `gorm:"column:part_id;not null" json:"part_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`

	Part *Part `gorm:"foreignKey:PartID" json:"part,omitempty"`
}

// Total returns quantity times the snapshotted unit price.
func (op OrderPart) Total() decimal.Decimal {
	return op.UnitPrice.Mul(decimal.NewFromInt(int64(op.Quantity)))
}
