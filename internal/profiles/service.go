package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

const (
	minMemberAge = 18
	maxMemberAge = 100
	dobLayout    = "2006-01-02"
)

type profileRepository interface {
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateFields(ctx context.Context, id, userID uuid.UUID, fields map[string]any) (int64, error)
	Feed(ctx context.Context, q FeedQuery) ([]models.Profile, error)
	PrimaryImageURLs(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service exposes profile creation, lookup, update, and the browse feed.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateProfileInput) (*ProfileDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProfileDTO, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, id, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	Feed(ctx context.Context, filters FeedFilters, page pagination.Params) (*FeedPage, error)
}

type service struct {
	repo profileRepository
	now  func() time.Time
}

// NewService constructs the profiles service.
func NewService(repo profileRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Create persists the wizard aggregate in one insert. The whole biodata
// either lands or nothing does.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateProfileInput) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	gender, err := enums.ParseGender(strings.TrimSpace(input.Gender))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid gender")
	}

	dob, err := time.Parse(dobLayout, strings.TrimSpace(input.DateOfBirth))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
	}
	now := s.now()
	age := ageAt(dob, now)
	if age < minMemberAge || age > maxMemberAge {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("member age must be between %d and %d", minMemberAge, maxMemberAge))
	}

	profile := &models.Profile{
		UserID:        userID,
		FullName:      strings.TrimSpace(input.FullName),
		Gender:        gender,
		DateOfBirth:   dob,
		Gotra:         strings.TrimSpace(input.Gotra),
		Caste:         input.Caste,
		Phone:         input.Phone,
		City:          input.City,
		State:         input.State,
		Address:       input.Address,
		Education:     input.Education,
		Occupation:    input.Occupation,
		AnnualIncome:  input.AnnualIncome,
		FatherName:    input.FatherName,
		MotherName:    input.MotherName,
		MaritalStatus: input.MaritalStatus,
		About:         input.About,
	}

	created, err := s.repo.Create(ctx, profile)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "profile already exists for this user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist profile")
	}
	return FromModel(created, now), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProfileDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile identity missing")
	}
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return FromModel(profile, s.now()), nil
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return FromModel(profile, s.now()), nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile identity missing")
	}

	fields := map[string]any{}
	setIfPresent := func(column string, value *string) {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	setIfPresent("full_name", input.FullName)
	setIfPresent("caste", input.Caste)
	setIfPresent("phone", input.Phone)
	setIfPresent("city", input.City)
	setIfPresent("state", input.State)
	setIfPresent("address", input.Address)
	setIfPresent("education", input.Education)
	setIfPresent("occupation", input.Occupation)
	setIfPresent("annual_income", input.AnnualIncome)
	setIfPresent("father_name", input.FatherName)
	setIfPresent("mother_name", input.MotherName)
	setIfPresent("marital_status", input.MaritalStatus)
	setIfPresent("about", input.About)

	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.UpdateFields(ctx, id, userID, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload profile")
	}
	return FromModel(profile, s.now()), nil
}

func (s *service) Feed(ctx context.Context, filters FeedFilters, page pagination.Params) (*FeedPage, error) {
	if filters.AgeMin < 0 || filters.AgeMax < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age bounds must be non-negative")
	}
	if filters.AgeMin > 0 && filters.AgeMax > 0 && filters.AgeMin > filters.AgeMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age_min cannot exceed age_max")
	}
	if filters.Gender != "" {
		if _, err := enums.ParseGender(filters.Gender); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid gender filter")
		}
	}
	sort := strings.ToLower(strings.TrimSpace(filters.Sort))
	switch sort {
	case "", "asc", "desc":
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort must be asc or desc")
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	now := s.now()

	query := FeedQuery{
		Name:      strings.TrimSpace(filters.Name),
		Gotra:     strings.TrimSpace(filters.Gotra),
		Gender:    strings.TrimSpace(filters.Gender),
		Ascending: sort == "asc",
		Cursor:    cursor,
		Limit:     limit + 1,
	}
	if filters.AgeMin > 0 {
		bound := now.AddDate(-filters.AgeMin, 0, 0)
		query.BornBefore = &bound
	}
	if filters.AgeMax > 0 {
		bound := now.AddDate(-(filters.AgeMax + 1), 0, 0)
		query.BornAfter = &bound
	}

	rows, err := s.repo.Feed(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query feed")
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	primaries, err := s.repo.PrimaryImageURLs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load primary images")
	}

	items := make([]FeedItem, 0, len(rows))
	for _, row := range rows {
		item := FeedItem{
			ProfileID:  row.ID,
			FullName:   row.FullName,
			Gender:     row.Gender,
			Age:        ageAt(row.DateOfBirth, now),
			Gotra:      row.Gotra,
			City:       row.City,
			Occupation: row.Occupation,
			CreatedAt:  row.CreatedAt,
		}
		if url, ok := primaries[row.ID]; ok {
			item.PrimaryImageURL = &url
		}
		items = append(items, item)
	}

	pageOut := &FeedPage{Items: items}
	if hasMore {
		pageOut.NextCursor = nextCursorFor(items, limit)
	}
	return pageOut, nil
}
