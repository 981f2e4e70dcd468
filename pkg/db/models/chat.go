package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat is the one conversation between a pair of users. Participant
// columns are stored in sorted order so the pair index stays unique
// regardless of who opened the chat.
type Chat struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	User1ID   uuid.UUID `gorm:"column:user1_id;type:uuid;not null;uniqueIndex:idx_chats_pair"`
	User2ID   uuid.UUID `gorm:"column:user2_id;type:uuid;not null;uniqueIndex:idx_chats_pair"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
