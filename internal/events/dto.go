package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
)

// EventDTO is the API projection of a community event.
type EventDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EventDate     time.Time `json:"event_date"`
	Location      *string   `json:"location,omitempty"`
	OrganizerName string    `json:"organizer_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateEventInput carries the admin-submitted event fields.
type CreateEventInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	EventDate   string  `json:"event_date" validate:"required"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=300"`
}

// UpdateEventInput carries a partial event edit. Nil fields are untouched.
type UpdateEventInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	EventDate   *string `json:"event_date,omitempty"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=300"`
}

func fromModel(e *models.Event, organizerName string) EventDTO {
	return EventDTO{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		EventDate:     e.EventDate,
		Location:      e.Location,
		OrganizerName: organizerName,
		CreatedAt:     e.CreatedAt,
	}
}
