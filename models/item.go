// models/item.go
package models

import "time"

const ItemTable = "items"
const CategoryTable = "categories"

// Condition 取值，前端下拉框用同一组
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
	ConditionBroken    = "broken"
)

type Category struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   string    `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Item struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	CategoryID   string    `gorm:"type:uuid;index;not null" json:"categoryId"`
	Category     *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SerialNumber string    `gorm:"size:120;uniqueIndex;not null" json:"serialNumber"`

	// 库存：quantity 总数，available_quantity 当前可借
	// 只允许审批流程和管理员改总量时改动，0 <= available <= quantity
	Quantity          int `gorm:"not null" json:"quantity"`
	AvailableQuantity int `gorm:"not null" json:"availableQuantity"`

	Condition      string `gorm:"size:20;not null;default:'good'" json:"condition"`
	Location       string `gorm:"size:255" json:"location,omitempty"`
	Image          string `gorm:"size:500" json:"image,omitempty"`
	Specifications string `gorm:"type:text" json:"specifications,omitempty"`
	IsAvailable    bool   `gorm:"not null;default:true" json:"isAvailable"`

	CreatedBy string    `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string     { return ItemTable }
func (Category) TableName() string { return CategoryTable }
