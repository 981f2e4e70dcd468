package chats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/logger"
)

const maxMessageLength = 5000

type chatRepository interface {
	FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	CreateMessage(ctx context.Context, message *models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error)
	LastMessages(ctx context.Context, chatIDs []uuid.UUID) (map[uuid.UUID]models.Message, error)
	CounterpartNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// messageBus fans persisted messages out to live subscribers.
type messageBus interface {
	ChatChannel(chatID string) string
	Publish(ctx context.Context, channel string, payload any) error
}

// Service exposes one-to-one conversations.
type Service interface {
	Open(ctx context.Context, userID, otherUserID uuid.UUID) (*ChatDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]ChatDTO, error)
	ListMessages(ctx context.Context, chatID, userID uuid.UUID) ([]MessageDTO, error)
	Send(ctx context.Context, chatID, senderID uuid.UUID, content string) (*MessageDTO, error)
	EnsureParticipant(ctx context.Context, chatID, userID uuid.UUID) error
}

type service struct {
	repo chatRepository
	bus  messageBus
	logg *logger.Logger
}

func NewService(repo chatRepository, bus messageBus, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("chat repository required")
	}
	if bus == nil {
		return nil, fmt.Errorf("message bus required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, bus: bus, logg: logg}, nil
}

// Open returns the single conversation with the other user, creating it
// on first contact. Calling it again returns the same chat.
func (s *service) Open(ctx context.Context, userID, otherUserID uuid.UUID) (*ChatDTO, error) {
	if userID == uuid.Nil || otherUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "participant identity missing")
	}
	if userID == otherUserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot open a chat with yourself")
	}

	chat, err := s.repo.FindOrCreate(ctx, userID, otherUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open chat")
	}

	counterpart := counterpartOf(chat, userID)
	names, err := s.repo.CounterpartNames(ctx, []uuid.UUID{counterpart})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counterpart name")
	}

	return &ChatDTO{
		ID:              chat.ID,
		CounterpartID:   counterpart,
		CounterpartName: names[counterpart],
		CreatedAt:       chat.CreatedAt,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ChatDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	chats, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list chats")
	}

	chatIDs := make([]uuid.UUID, 0, len(chats))
	counterparts := make([]uuid.UUID, 0, len(chats))
	for _, chat := range chats {
		chatIDs = append(chatIDs, chat.ID)
		counterparts = append(counterparts, counterpartOf(&chat, userID))
	}

	lastByChat, err := s.repo.LastMessages(ctx, chatIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last messages")
	}
	names, err := s.repo.CounterpartNames(ctx, counterparts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counterpart names")
	}

	out := make([]ChatDTO, 0, len(chats))
	for i, chat := range chats {
		dto := ChatDTO{
			ID:              chat.ID,
			CounterpartID:   counterparts[i],
			CounterpartName: names[counterparts[i]],
			CreatedAt:       chat.CreatedAt,
		}
		if last, ok := lastByChat[chat.ID]; ok {
			dto.LastMessageAt = last.CreatedAt
			dto.LastMessageBody = last.Content
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *service) ListMessages(ctx context.Context, chatID, userID uuid.UUID) ([]MessageDTO, error) {
	if err := s.EnsureParticipant(ctx, chatID, userID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	out := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, messageFromModel(&messages[i]))
	}
	return out, nil
}

// Send persists the line, then fans it out. A failed publish does not
// unwind the write and does not fail the request; a retry would
// duplicate the message, and readers catch up from the table anyway.
func (s *service) Send(ctx context.Context, chatID, senderID uuid.UUID, content string) (*MessageDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if len(content) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content too long")
	}
	if err := s.EnsureParticipant(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	message, err := s.repo.CreateMessage(ctx, &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist message")
	}

	dto := messageFromModel(message)
	frame, err := json.Marshal(dto)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "chat_id", chatID.String()), "chat.frame_encode_failed", err)
		return &dto, nil
	}
	if err := s.bus.Publish(ctx, s.bus.ChatChannel(chatID.String()), frame); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "chat_id", chatID.String()), "chat.publish_failed", err)
	}
	return &dto, nil
}

// EnsureParticipant verifies the user belongs to the chat.
func (s *service) EnsureParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	if chatID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "chat identity missing")
	}

	chat, err := s.repo.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "chat not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat")
	}
	if chat.User1ID != userID && chat.User2ID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a participant of this chat")
	}
	return nil
}

func counterpartOf(chat *models.Chat, userID uuid.UUID) uuid.UUID {
	if chat.User1ID == userID {
		return chat.User2ID
	}
	return chat.User1ID
}
