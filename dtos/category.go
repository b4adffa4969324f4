package dtos

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name            string     `json:"name" binding:"required,min=1,max=120"`
	Slug            string     `json:"slug" binding:"omitempty,max=160,sluggable"`
	ParentID        *uuid.UUID `json:"parent_id"`
	SortOrder       *int       `json:"sort_order" binding:"omitempty,gte=0"`
	IsActive        *bool      `json:"is_active"`
	Description     string     `json:"description" binding:"max=2000"`
	Icon            string     `json:"icon" binding:"max=255"`
	Image           string     `json:"image" binding:"max=1024"`
	MetaTitle       string     `json:"meta_title" binding:"max=255"`
	MetaDescription string     `json:"meta_description" binding:"max=500"`
}

// UpdateCategoryRequest carries only the fields present in the request body.
// ParentID distinguishes an absent key (keep parent) from null (make root).
type UpdateCategoryRequest struct {
	Name            *string      `json:"name" binding:"omitempty,min=1,max=120"`
	Slug            *string      `json:"slug" binding:"omitempty,max=160,sluggable"`
	ParentID        OptionalUUID `json:"parent_id"`
	SortOrder       *int         `json:"sort_order" binding:"omitempty,gte=0"`
	IsActive        *bool        `json:"is_active"`
	Description     *string      `json:"description" binding:"omitempty,max=2000"`
	Icon            *string      `json:"icon" binding:"omitempty,max=255"`
	Image           *string      `json:"image" binding:"omitempty,max=1024"`
	MetaTitle       *string      `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription *string      `json:"meta_description" binding:"omitempty,max=500"`
}

type MoveCategoryRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

type ReorderCategoryRequest struct {
	SortOrder *int `json:"sort_order" binding:"required,gte=0"`
}

// OptionalUUID is a JSON field that records whether it was present at all.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

func (o OptionalUUID) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// SetUUID builds a present OptionalUUID; nil means an explicit null.
func SetUUID(id *uuid.UUID) OptionalUUID {
	return OptionalUUID{Set: true, Value: id}
}
