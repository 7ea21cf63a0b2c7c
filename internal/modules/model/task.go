package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Task struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssetID uuid.UUID `gorm:"type:uuid;not null;index:ix_tasks_asset_id" json:"asset_id"`
	// Denormalized owner for authorization filtering without a join.
	UserID uuid.UUID `gorm:"type:uuid;not null;index:ix_tasks_user_id" json:"user_id"`

	Name        string `gorm:"type:text;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// 1 = critical, 2 = recommended, 3 = optional.
	Priority   int    `gorm:"type:smallint;not null;default:2;check:priority BETWEEN 1 AND 3" json:"priority"`
	Frequency  string `gorm:"type:text" json:"frequency"`
	Difficulty string `gorm:"type:text;not null;default:'medium';check:difficulty IN ('easy','medium','hard','very hard')" json:"difficulty"`
	Duration   string `gorm:"type:text" json:"duration"`
	Who        string `gorm:"type:text;not null;default:'owner';check:who IN ('owner','professional')" json:"who"`

	Steps datatypes.JSONSlice[string] `gorm:"type:jsonb" swaggertype:"array,string" json:"steps"`
	Tools datatypes.JSONSlice[string] `gorm:"type:jsonb" swaggertype:"array,string" json:"tools"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Task <-> Asset
	Asset *Asset `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"asset,omitempty"`
}

func (Task) TableName() string { return "tasks" }
