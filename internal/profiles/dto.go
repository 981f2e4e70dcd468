package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

// ProfileDTO is the transport shape for a full biodata record.
type ProfileDTO struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	FullName      string       `json:"full_name"`
	Gender        enums.Gender `json:"gender"`
	DateOfBirth   time.Time    `json:"date_of_birth"`
	Age           int          `json:"age"`
	Gotra         string       `json:"gotra"`
	Caste         *string      `json:"caste,omitempty"`
	Phone         *string      `json:"phone,omitempty"`
	City          *string      `json:"city,omitempty"`
	State         *string      `json:"state,omitempty"`
	Address       *string      `json:"address,omitempty"`
	Education     *string      `json:"education,omitempty"`
	Occupation    *string      `json:"occupation,omitempty"`
	AnnualIncome  *string      `json:"annual_income,omitempty"`
	FatherName    *string      `json:"father_name,omitempty"`
	MotherName    *string      `json:"mother_name,omitempty"`
	MaritalStatus *string      `json:"marital_status,omitempty"`
	About         *string      `json:"about,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CreateProfileInput is the wizard aggregate submitted in one request.
type CreateProfileInput struct {
	FullName      string  `json:"full_name" validate:"required,min=2,max=120"`
	Gender        string  `json:"gender" validate:"required"`
	DateOfBirth   string  `json:"date_of_birth" validate:"required"`
	Gotra         string  `json:"gotra" validate:"required,min=2,max=80"`
	Caste         *string `json:"caste,omitempty" validate:"omitempty,max=80"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Education     *string `json:"education,omitempty"`
	Occupation    *string `json:"occupation,omitempty"`
	AnnualIncome  *string `json:"annual_income,omitempty"`
	FatherName    *string `json:"father_name,omitempty"`
	MotherName    *string `json:"mother_name,omitempty"`
	MaritalStatus *string `json:"marital_status,omitempty"`
	About         *string `json:"about,omitempty" validate:"omitempty,max=2000"`
}

// UpdateProfileInput is the owner-editable subset; nil fields are left alone.
type UpdateProfileInput struct {
	FullName      *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=120"`
	Caste         *string `json:"caste,omitempty" validate:"omitempty,max=80"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Education     *string `json:"education,omitempty"`
	Occupation    *string `json:"occupation,omitempty"`
	AnnualIncome  *string `json:"annual_income,omitempty"`
	FatherName    *string `json:"father_name,omitempty"`
	MotherName    *string `json:"mother_name,omitempty"`
	MaritalStatus *string `json:"marital_status,omitempty"`
	About         *string `json:"about,omitempty" validate:"omitempty,max=2000"`
}

// FeedFilters narrows the browse feed. Sort is "asc" or "desc" by
// created_at; empty means newest first.
type FeedFilters struct {
	Name   string
	Gotra  string
	Gender string
	AgeMin int
	AgeMax int
	Sort   string
}

// FeedItem is one card in the browse feed.
type FeedItem struct {
	ProfileID       uuid.UUID    `json:"profile_id"`
	FullName        string       `json:"full_name"`
	Gender          enums.Gender `json:"gender"`
	Age             int          `json:"age"`
	Gotra           string       `json:"gotra"`
	City            *string      `json:"city,omitempty"`
	Occupation      *string      `json:"occupation,omitempty"`
	PrimaryImageURL *string      `json:"primary_image_url,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// FeedPage carries one page of feed results plus the next cursor.
type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Profile, now time.Time) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:            p.ID,
		UserID:        p.UserID,
		FullName:      p.FullName,
		Gender:        p.Gender,
		DateOfBirth:   p.DateOfBirth,
		Age:           ageAt(p.DateOfBirth, now),
		Gotra:         p.Gotra,
		Caste:         p.Caste,
		Phone:         p.Phone,
		City:          p.City,
		State:         p.State,
		Address:       p.Address,
		Education:     p.Education,
		Occupation:    p.Occupation,
		AnnualIncome:  p.AnnualIncome,
		FatherName:    p.FatherName,
		MotherName:    p.MotherName,
		MaritalStatus: p.MaritalStatus,
		About:         p.About,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ageAt(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func nextCursorFor(items []FeedItem, limit int) *string {
	if len(items) < limit {
		return nil
	}
	last := items[len(items)-1]
	encoded := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: last.CreatedAt,
		ID:        last.ProfileID,
	})
	return &encoded
}
