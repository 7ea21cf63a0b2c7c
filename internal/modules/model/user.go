package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	Username     string    `gorm:"type:varchar(32)" json:"username"`
	FirstName    string    `gorm:"type:varchar(32)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(32)" json:"last_name"`

	// Opaque token backing the refresh cookie; cleared on signout.
	RefreshToken string `gorm:"type:text;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// User <-> Asset
	Assets []Asset `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"assets,omitempty"`
}

func (User) TableName() string { return "users" }
