package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the billing record for a completed order, one per order.
type Invoice struct {
	ID            uint            `gorm:"column:id;primaryKey" json:"id"`
	OrderID       uint            `gorm:"column:order_id;uniqueIndex;not null" json:"order_id"`
	InvoiceNumber string          `gorm:"column:invoice_number;size:50;uniqueIndex;not null" json:"invoice_number"`
	IssueDate     time.Time       `gorm:"column:issue_date;autoCreateTime" json:"issue_date"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	Notes         *string         `gorm:"column:notes" json:"notes,omitempty"`
}
