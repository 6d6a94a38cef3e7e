package models

// WorkStation is a physical bay an order can be assigned to.
type WorkStation struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	Name     string `gorm:"column:name;size:50;not null" json:"name"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`

	Orders []Order `gorm:"foreignKey:WorkStationID" json:"orders,omitempty"`
}

// TableName keeps the underscored table name from the original schema.
func (WorkStation) TableName() string {
	return "work_stations"
}
