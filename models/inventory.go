package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Inventory struct {
	ID               uuid.UUID                  `gorm:"type:uuid;primary_key" json:"id"`
	SKU              string                     `gorm:"uniqueIndex;not null" json:"sku"`
	Name             string                     `gorm:"not null" json:"name"`
	Description      string                     `json:"description,omitempty"`
	ModelCode        string                     `gorm:"uniqueIndex;not null" json:"model_code"`
	CategoryID       uuid.UUID                  `gorm:"type:uuid;not null;index" json:"category_id"`
	Category         *Category                  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Quantity         int                        `gorm:"not null;default:0" json:"quantity"`
	ReservedQuantity int                        `gorm:"not null;default:0" json:"reserved_quantity"`
	CostPrice        float64                    `gorm:"not null" json:"cost_price"`
	SellingPrice     float64                    `gorm:"not null" json:"selling_price"`
	SupplierName     string                     `json:"supplier_name,omitempty"`
	SupplierContact  string                     `json:"supplier_contact,omitempty"`
	Images           datatypes.JSONSlice[string] `json:"images"`
	IsActive         bool                       `gorm:"not null" json:"is_active"`
	IsPublished      bool                       `gorm:"not null" json:"is_published"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Images == nil {
		i.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}

// Available is the quantity not yet reserved by pending orders.
func (i *Inventory) Available() int {
	return i.Quantity - i.ReservedQuantity
}
