package model

import (
	"time"

	"github.com/google/uuid"
)

// Task generation states. Pending is transient and guarded by TasksLockedAt;
// ready and error are resting states.
const (
	TasksStatusNone    = "none"
	TasksStatusPending = "pending"
	TasksStatusReady   = "ready"
	TasksStatusError   = "error"
)

type Asset struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Status      string `gorm:"type:text;not null;default:'active';check:status IN ('active','inactive','maintenance','disposed')" json:"status"`
	Name        string `gorm:"type:text;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Type         string `gorm:"type:text" json:"type"`
	SubType      string `gorm:"type:text" json:"subtype"`
	Brand        string `gorm:"type:text" json:"brand"`
	Model        string `gorm:"type:text" json:"model"`
	ModelNumber  string `gorm:"type:text" json:"model_number"`
	SerialNumber string `gorm:"type:text" json:"serial_number"`
	Condition    string `gorm:"type:text" json:"condition"`
	Location     string `gorm:"type:text" json:"location"`
	Year         string `gorm:"type:text" json:"year"`

	PurchaseDate  *time.Time `json:"purchase_date"`
	InServiceDate *time.Time `json:"in_service_date"`
	Value         *float64   `gorm:"type:numeric" json:"value"`

	// S3 object key of the uploaded photo; clients fetch it via a presigned URL.
	ImageKey string `gorm:"type:text" json:"image_key"`

	// Generation state group. These fields change together: TasksPromptHash
	// and TasksUpdatedAt are written only on a successful generation, and the
	// stored task set always matches TasksPromptHash when status is ready.
	TasksStatus     string     `gorm:"type:text;not null;default:'none';check:tasks_status IN ('none','pending','ready','error')" json:"tasks_status"`
	TasksVersion    int        `gorm:"not null;default:1" json:"tasks_version"`
	TasksPromptHash *string    `gorm:"type:text" json:"tasks_prompt_hash"`
	TasksUpdatedAt  *time.Time `json:"tasks_updated_at"`
	// Lease stamp set when a generation wins the pending lock. A pending
	// status older than the configured lease TTL is reclaimable.
	TasksLockedAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Asset <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"user,omitempty"`

	// Asset <-> Task
	Tasks []Task `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"tasks,omitempty"`
}

func (Asset) TableName() string { return "assets" }
