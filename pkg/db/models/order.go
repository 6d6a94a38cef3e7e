package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/VadoVates/autoservice/pkg/enums"
)

// Order is a unit of repair work tracked through a status lifecycle.
// StartedAt and CompletedAt are written exactly once by the lifecycle
// service; FinalCost is set when the order is invoiced.
type Order struct {
	ID            uint                `gorm:"column:id;primaryKey" json:"id"`
	CustomerID    uint                `gorm:"column:customer_id;not null" json:"customer_id"`
	VehicleID     uint                `gorm:"column:vehicle_id;not null" json:"vehicle_id"`
	WorkStationID *uint               `gorm:"column:work_station_id" json:"work_station_id,omitempty"`
	Description   string              `gorm:"column:description;not null" json:"description"`
	Priority      enums.OrderPriority `gorm:"column:priority;type:text;not null;default:'normal'" json:"priority"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'new'" json:"status"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	StartedAt     *time.Time          `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt   *time.Time          `gorm:"column:completed_at" json:"completed_at,omitempty"`
	EstimatedCost decimal.Decimal     `gorm:"column:estimated_cost;type:numeric(10,2);not null;default:0" json:"estimated_cost"`
	FinalCost     *decimal.Decimal    `gorm:"column:final_cost;type:numeric(10,2)" json:"final_cost,omitempty"`

	Customer    *Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Vehicle     *Vehicle     `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	WorkStation *WorkStation `gorm:"foreignKey:WorkStationID" json:"work_station,omitempty"`
	Parts       []OrderPart  `gorm:"foreignKey:OrderID" json:"parts,omitempty"`
	Invoice     *Invoice     `gorm:"foreignKey:OrderID" json:"invoice,omitempty"`
}
