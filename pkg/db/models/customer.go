package models

import "time"

// Customer owns vehicles and repair orders.
type Customer struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:100;not null" json:"name"`
	Phone     *string   `gorm:"column:phone;size:20" json:"phone,omitempty"`
	Email     *string   `gorm:"column:email;size:100" json:"email,omitempty"`
	Address   *string   `gorm:"column:address;size:200" json:"address,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Vehicles []Vehicle `gorm:"foreignKey:CustomerID" json:"vehicles,omitempty"`
	Orders   []Order   `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
}
