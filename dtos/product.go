package dtos

import "github.com/google/uuid"

type CreateProductRequest struct {
	InventoryID      uuid.UUID  `json:"inventory_id" binding:"required"`
	Title            string     `json:"title" binding:"required,min=1,max=200,sluggable"`
	Slug             string     `json:"slug" binding:"omitempty,max=220,sluggable"`
	ShortDescription string     `json:"short_description" binding:"max=500"`
	Description      string     `json:"description" binding:"max=10000"`
	Price            *float64   `json:"price" binding:"omitempty,gt=0"`
	CategoryID       *uuid.UUID `json:"category_id"`
	Images           []string   `json:"images" binding:"omitempty,dive,url"`
}
