package models

import (
	"time"

	"github.com/google/uuid"
)

// Like records one user's like on one post. The composite unique
// index makes the toggle idempotent under races.
type Like struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;uniqueIndex:idx_likes_post_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_likes_post_user"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
