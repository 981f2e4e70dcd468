package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

// ProfileImage is one registry entry for an uploaded photo. The two
// primary flags are partitioned by ImageType: at most one row per
// profile may carry is_primary_profile, and at most one may carry
// is_primary_house (enforced by partial unique indexes).
type ProfileImage struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID        uuid.UUID       `gorm:"column:profile_id;type:uuid;not null;index"`
	ImageType        enums.ImageType `gorm:"column:image_type;type:text;not null"`
	ImageURL         string          `gorm:"column:image_url;not null"`
	FilePath         string          `gorm:"column:file_path;not null"`
	IsPrimaryProfile bool            `gorm:"column:is_primary_profile;not null;default:false"`
	IsPrimaryHouse   bool            `gorm:"column:is_primary_house;not null;default:false"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
