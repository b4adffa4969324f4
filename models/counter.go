package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Counter is a named monotonically increasing sequence, e.g. USER:ADMIN.
type Counter struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Key        string    `gorm:"column:seq_key;uniqueIndex;not null" json:"key"`
	Prefix     string    `gorm:"not null" json:"prefix"`
	Padding    int       `gorm:"not null;default:5" json:"padding"`
	NextNumber int64     `gorm:"not null;default:0" json:"next_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Counter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
