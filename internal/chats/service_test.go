package chats

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/logger"
)

type stubChatRepo struct {
	chats      map[uuid.UUID]*models.Chat
	messages   []models.Message
	names      map[uuid.UUID]string
	createErr  error
	messageErr error
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{
		chats: make(map[uuid.UUID]*models.Chat),
		names: make(map[uuid.UUID]string),
	}
}

func (s *stubChatRepo) FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user1, user2 := sortPair(userA, userB)
	for _, chat := range s.chats {
		if chat.User1ID == user1 && chat.User2ID == user2 {
			return chat, nil
		}
	}
	chat := &models.Chat{ID: uuid.New(), User1ID: user1, User2ID: user2, CreatedAt: time.Now().UTC()}
	s.chats[chat.ID] = chat
	return chat, nil
}

func (s *stubChatRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	chat, ok := s.chats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *chat
	return &copied, nil
}

func (s *stubChatRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var out []models.Chat
	for _, chat := range s.chats {
		if chat.User1ID == userID || chat.User2ID == userID {
			out = append(out, *chat)
		}
	}
	return out, nil
}

func (s *stubChatRepo) CreateMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if s.messageErr != nil {
		return nil, s.messageErr
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	s.messages = append(s.messages, *message)
	return message, nil
}

func (s *stubChatRepo) ListMessages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubChatRepo) LastMessages(ctx context.Context, chatIDs []uuid.UUID) (map[uuid.UUID]models.Message, error) {
	out := make(map[uuid.UUID]models.Message)
	for _, m := range s.messages {
		out[m.ChatID] = m
	}
	return out, nil
}

func (s *stubChatRepo) CounterpartNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.names, nil
}

type stubBus struct {
	channels   []string
	frames     [][]byte
	publishErr error
}

func (s *stubBus) ChatChannel(chatID string) string {
	return "hm:chat:" + chatID
}

func (s *stubBus) Publish(ctx context.Context, channel string, payload any) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.channels = append(s.channels, channel)
	if frame, ok := payload.([]byte); ok {
		s.frames = append(s.frames, frame)
	}
	return nil
}

func newTestService(t *testing.T, repo chatRepository, bus messageBus) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	svc, err := NewService(repo, bus, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestOpenIsIdempotentForPair(t *testing.T) {
	t.Parallel()

	repo := newStubChatRepo()
	svc := newTestService(t, repo, &stubBus{})

	userA := uuid.New()
	userB := uuid.New()
	repo.names[userB] = "Priya Joshi"

	first, err := svc.Open(context.Background(), userA, userB)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if first.CounterpartID != userB || first.CounterpartName != "Priya Joshi" {
		t.Fatalf("unexpected counterpart %+v", first)
	}

	// Opening from the other side lands on the same conversation.
	second, err := svc.Open(context.Background(), userB, userA)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("pair must map to a single chat: %s vs %s", first.ID, second.ID)
	}
	if second.CounterpartID != userA {
		t.Fatalf("counterpart must be relative to the caller")
	}
}

func TestOpenRejectsSelfChat(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubChatRepo(), &stubBus{})
	userID := uuid.New()
	_, err := svc.Open(context.Background(), userID, userID)
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendPersistsThenPublishes(t *testing.T) {
	t.Parallel()

	repo := newStubChatRepo()
	bus := &stubBus{}
	svc := newTestService(t, repo, bus)

	userA := uuid.New()
	userB := uuid.New()
	chat := &models.Chat{ID: uuid.New()}
	chat.User1ID, chat.User2ID = sortPair(userA, userB)
	repo.chats[chat.ID] = chat

	dto, err := svc.Send(context.Background(), chat.ID, userA, "  namaste  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if dto.Content != "namaste" {
		t.Fatalf("content not trimmed: %q", dto.Content)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("message not persisted")
	}
	if len(bus.channels) != 1 || bus.channels[0] != "hm:chat:"+chat.ID.String() {
		t.Fatalf("unexpected publish channels %v", bus.channels)
	}

	var frame MessageDTO
	if err := json.Unmarshal(bus.frames[0], &frame); err != nil {
		t.Fatalf("frame not json: %v", err)
	}
	if frame.ID != dto.ID || frame.Content != "namaste" {
		t.Fatalf("unexpected frame %+v", frame)
	}
}

func TestSendSurvivesPublishFailure(t *testing.T) {
	t.Parallel()

	repo := newStubChatRepo()
	bus := &stubBus{publishErr: errors.New("broker down")}
	svc := newTestService(t, repo, bus)

	userA := uuid.New()
	userB := uuid.New()
	chat := &models.Chat{ID: uuid.New()}
	chat.User1ID, chat.User2ID = sortPair(userA, userB)
	repo.chats[chat.ID] = chat

	// The message is already persisted when the fan-out fails; erroring
	// here would make the client retry and duplicate the line.
	dto, err := svc.Send(context.Background(), chat.ID, userA, "namaste")
	if err != nil {
		t.Fatalf("Send must not fail on publish: %v", err)
	}
	if dto == nil || dto.Content != "namaste" {
		t.Fatalf("expected persisted message back, got %+v", dto)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("message not persisted")
	}
	if len(bus.channels) != 0 {
		t.Fatalf("no successful publish expected")
	}
}

func TestSendRejectsNonParticipant(t *testing.T) {
	t.Parallel()

	repo := newStubChatRepo()
	svc := newTestService(t, repo, &stubBus{})

	chat := &models.Chat{ID: uuid.New()}
	chat.User1ID, chat.User2ID = sortPair(uuid.New(), uuid.New())
	repo.chats[chat.ID] = chat

	_, err := svc.Send(context.Background(), chat.ID, uuid.New(), "hello")
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatalf("no message should be written")
	}
}

func TestSendUnknownChat(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubChatRepo(), &stubBus{})
	_, err := svc.Send(context.Background(), uuid.New(), uuid.New(), "hello")
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListMessagesGatedToParticipants(t *testing.T) {
	t.Parallel()

	repo := newStubChatRepo()
	bus := &stubBus{}
	svc := newTestService(t, repo, bus)

	userA := uuid.New()
	userB := uuid.New()
	chat := &models.Chat{ID: uuid.New()}
	chat.User1ID, chat.User2ID = sortPair(userA, userB)
	repo.chats[chat.ID] = chat

	if _, err := svc.Send(context.Background(), chat.ID, userA, "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send(context.Background(), chat.ID, userB, "second"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	listed, err := svc.ListMessages(context.Background(), chat.ID, userB)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected two messages, got %d", len(listed))
	}

	_, err = svc.ListMessages(context.Background(), chat.ID, uuid.New())
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListProjectsLastMessage(t *testing.T) {
	t.Parallel()

	repo := newStubChatRepo()
	svc := newTestService(t, repo, &stubBus{})

	userA := uuid.New()
	userB := uuid.New()
	repo.names[userB] = "Priya Joshi"
	chat := &models.Chat{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	chat.User1ID, chat.User2ID = sortPair(userA, userB)
	repo.chats[chat.ID] = chat
	repo.messages = append(repo.messages, models.Message{
		ID:        uuid.New(),
		ChatID:    chat.ID,
		SenderID:  userB,
		Content:   "see you at the sammelan",
		CreatedAt: time.Now().UTC(),
	})

	listed, err := svc.List(context.Background(), userA)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one chat, got %d", len(listed))
	}
	got := listed[0]
	if got.CounterpartID != userB || got.CounterpartName != "Priya Joshi" {
		t.Fatalf("unexpected counterpart %+v", got)
	}
	if got.LastMessageBody != "see you at the sammelan" {
		t.Fatalf("missing last message: %+v", got)
	}
}
