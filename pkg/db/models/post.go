package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a community feed entry, optionally carrying one image.
type Post struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID uuid.UUID `gorm:"column:profile_id;type:uuid;not null;index"`
	Content   string    `gorm:"column:content;not null"`
	ImageURL  *string   `gorm:"column:image_url"`
	ImagePath *string   `gorm:"column:image_path"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
