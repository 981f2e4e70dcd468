package chats

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
)

// ChatDTO is one conversation as seen by the requesting user.
type ChatDTO struct {
	ID              uuid.UUID `json:"id"`
	CounterpartID   uuid.UUID `json:"counterpart_id"`
	CounterpartName string    `json:"counterpart_name,omitempty"`
	LastMessageAt   time.Time `json:"last_message_at"`
	LastMessageBody string    `json:"last_message_body,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// MessageDTO is one chat line. It doubles as the websocket frame payload.
type MessageDTO struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenChatInput names the other participant.
type OpenChatInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// SendMessageInput carries one outgoing chat line.
type SendMessageInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func messageFromModel(m *models.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
