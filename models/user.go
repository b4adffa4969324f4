package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// ClientInfo records where the most recent login came from.
type ClientInfo struct {
	Device    string `json:"device,omitempty"`
	Browser   string `json:"browser,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	HumanID      string         `gorm:"uniqueIndex;not null" json:"human_id"` // A00001, E00001
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"not null;default:employee" json:"role"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	TokenVersion int            `gorm:"not null;default:0" json:"-"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	ClientInfo   ClientInfo     `gorm:"embedded;embeddedPrefix:client_" json:"client_info"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HumanIDPrefix maps a role to the letter its human ids start with.
func HumanIDPrefix(role string) string {
	switch role {
	case RoleAdmin:
		return "A"
	case RoleEmployee:
		return "E"
	default:
		return "U"
	}
}
