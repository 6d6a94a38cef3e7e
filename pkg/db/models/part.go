package models

import "github.com/shopspring/decimal"

// Part is a stocked spare part. StockQuantity never drops below zero;
// mutations go through conditional updates, not read-modify-write.
type Part struct {
	ID            uint            `gorm:"column:id;primaryKey" json:"id"`
	Code          string          `gorm:"column:code;size:50;uniqueIndex;not null" json:"code"`
	Name          string          `gorm:"column:name;size:100;not null" json:"name"`
	Description   *string         `gorm:"column:description" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`

	OrderParts []OrderPart `gorm:"foreignKey:PartID" json:"-"`
}
