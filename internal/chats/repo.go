package chats

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
)

// Repository persists chats and messages. Pair columns are always stored
// sorted so the unique index arbitrates concurrent opens.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// sortPair normalizes an unordered user pair into column order.
func sortPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// FindOrCreate returns the single chat for a user pair, creating it on
// first open. A concurrent create loses to the unique index and falls
// back to reading the winner's row.
func (r *Repository) FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	user1, user2 := sortPair(userA, userB)

	var chat models.Chat
	err := r.db.WithContext(ctx).
		First(&chat, "user1_id = ? AND user2_id = ?", user1, user2).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = models.Chat{ID: uuid.New(), User1ID: user1, User2ID: user2}
	err = r.db.WithContext(ctx).Create(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !db.IsUniqueViolation(err) {
		return nil, err
	}

	var existing models.Chat
	if err := r.db.WithContext(ctx).
		First(&existing, "user1_id = ? AND user2_id = ?", user1, user2).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListByUser returns every chat the user participates in, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *Repository) CreateMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns a chat's lines oldest first.
func (r *Repository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// LastMessages resolves the newest line per chat.
func (r *Repository) LastMessages(ctx context.Context, chatIDs []uuid.UUID) (map[uuid.UUID]models.Message, error) {
	out := make(map[uuid.UUID]models.Message, len(chatIDs))
	if len(chatIDs) == 0 {
		return out, nil
	}

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("chat_id IN ?", chatIDs).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for _, m := range messages {
		out[m.ChatID] = m
	}
	return out, nil
}

// CounterpartNames resolves user ids to profile display names.
func (r *Repository) CounterpartNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	type row struct {
		UserID   uuid.UUID
		FullName string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("user_id, full_name").
		Where("user_id IN ?", userIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.UserID] = r.FullName
	}
	return out, nil
}
