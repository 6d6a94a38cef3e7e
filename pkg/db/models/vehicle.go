package models

// Vehicle is a customer's car tracked by registration number and VIN.
type Vehicle struct {
	ID                 uint    `gorm:"column:id;primaryKey" json:"id"`
	CustomerID         uint    `gorm:"column:customer_id;not null" json:"customer_id"`
	Brand              string  `gorm:"column:brand;size:50;not null" json:"brand"`
	Model              string  `gorm:"column:model;size:50;not null" json:"model"`
	Year               *int    `gorm:"column:year" json:"year,omitempty"`
	RegistrationNumber string  `gorm:"column:registration_number;size:20;uniqueIndex;not null" json:"registration_number"`
	VIN                *string `gorm:"column:vin;size:17;uniqueIndex" json:"vin,omitempty"`

	Owner  *Customer `gorm:"foreignKey:CustomerID" json:"owner,omitempty"`
	Orders []Order   `gorm:"foreignKey:VehicleID" json:"orders,omitempty"`
}
