package dtos

import "github.com/google/uuid"

type CreateInventoryRequest struct {
	Name            string    `json:"name" binding:"required,min=1,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	ModelCode       string    `json:"model_code" binding:"required,min=1,max=60"`
	CategoryID      uuid.UUID `json:"category_id" binding:"required"`
	Quantity        int       `json:"quantity" binding:"gte=0"`
	CostPrice       float64   `json:"cost_price" binding:"gte=0"`
	SellingPrice    float64   `json:"selling_price" binding:"required,gt=0"`
	SupplierName    string    `json:"supplier_name" binding:"max=200"`
	SupplierContact string    `json:"supplier_contact" binding:"max=200"`
	Images          []string  `json:"images" binding:"omitempty,dive,url"`
}
