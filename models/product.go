package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is the storefront listing for exactly one inventory row.
type Product struct {
	ID               uuid.UUID                  `gorm:"type:uuid;primary_key" json:"id"`
	InventoryID      uuid.UUID                  `gorm:"type:uuid;uniqueIndex;not null" json:"inventory_id"`
	Title            string                     `gorm:"not null" json:"title"`
	Slug             string                     `gorm:"uniqueIndex;not null" json:"slug"`
	ShortDescription string                     `json:"short_description,omitempty"`
	Description      string                     `json:"description,omitempty"`
	Price            float64                    `gorm:"not null;index" json:"price"`
	Images           datatypes.JSONSlice[string] `json:"images"`
	CategoryID       uuid.UUID                  `gorm:"type:uuid;not null;index" json:"category_id"`
	Category         *Category                  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsLive           bool                       `gorm:"not null;index" json:"is_live"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}
