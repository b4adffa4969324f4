package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is one node of the catalog tree. Level, Path and Ancestors are
// derived from the ParentID chain and are never written from request data.
type Category struct {
	ID              uuid.UUID                     `gorm:"type:uuid;primary_key" json:"id"`
	Name            string                        `gorm:"not null" json:"name"`
	Slug            string                        `gorm:"uniqueIndex;not null" json:"slug"`
	ParentID        *uuid.UUID                    `gorm:"type:uuid;index:idx_categories_parent_sort,priority:1" json:"parent_id"`
	Level           int                           `gorm:"not null;default:0" json:"level"`
	Path            string                        `gorm:"not null;index" json:"path"`
	Ancestors       datatypes.JSONSlice[uuid.UUID] `json:"ancestors"`
	SortOrder       int                           `gorm:"not null;index:idx_categories_parent_sort,priority:2" json:"sort_order"`
	IsActive        bool                          `gorm:"not null;index" json:"is_active"`
	Description     string                        `json:"description,omitempty"`
	Icon            string                        `json:"icon,omitempty"`
	Image           string                        `json:"image,omitempty"`
	MetaTitle       string                        `json:"meta_title,omitempty"`
	MetaDescription string                        `json:"meta_description,omitempty"`
	CreatedBy       *uuid.UUID                    `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt       time.Time                     `json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`

	Children []*Category `gorm:"-" json:"children,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Ancestors == nil {
		c.Ancestors = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

// IsRoot reports whether the node has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// HasAncestor reports whether id appears in the node's ancestor chain.
func (c *Category) HasAncestor(id uuid.UUID) bool {
	for _, a := range c.Ancestors {
		if a == id {
			return true
		}
	}
	return false
}
