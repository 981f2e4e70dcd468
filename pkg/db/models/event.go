package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a community announcement curated by admins.
type Event struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null"`
	EventDate   time.Time `gorm:"column:event_date;not null;index"`
	Location    *string   `gorm:"column:location"`
	CreatedBy   uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
