package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
)

const eventDateLayout = "2006-01-02"

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListUpcoming(ctx context.Context) ([]models.Event, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	OrganizerNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service exposes the events board. Writes are admin-gated at the router.
type Service interface {
	List(ctx context.Context) ([]EventDTO, error)
	Create(ctx context.Context, createdBy uuid.UUID, input CreateEventInput) (*EventDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*EventDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo eventRepository
}

func NewService(repo eventRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("event repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]EventDTO, error) {
	rows, err := s.repo.ListUpcoming(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}

	organizerIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		organizerIDs = append(organizerIDs, row.CreatedBy)
	}
	names, err := s.repo.OrganizerNames(ctx, organizerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organizer names")
	}

	out := make([]EventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i], names[rows[i].CreatedBy]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, createdBy uuid.UUID, input CreateEventInput) (*EventDTO, error) {
	if createdBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	eventDate, err := time.Parse(eventDateLayout, input.EventDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_date must be YYYY-MM-DD")
	}

	event := &models.Event{
		Title:       title,
		Description: description,
		EventDate:   eventDate,
		Location:    trimOptional(input.Location),
		CreatedBy:   createdBy,
	}
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist event")
	}

	dto := fromModel(created, "")
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*EventDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event identity missing")
	}

	fields := make(map[string]any)
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be blank")
		}
		fields["title"] = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be blank")
		}
		fields["description"] = description
	}
	if input.EventDate != nil {
		eventDate, err := time.Parse(eventDateLayout, *input.EventDate)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_date must be YYYY-MM-DD")
		}
		fields["event_date"] = eventDate
	}
	if input.Location != nil {
		fields["location"] = trimOptional(input.Location)
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}

	reloaded, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload event")
	}
	dto := fromModel(reloaded, "")
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event identity missing")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
