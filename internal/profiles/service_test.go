package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

type stubProfileRepo struct {
	profiles  map[uuid.UUID]*models.Profile
	feedRows  []models.Profile
	feedQuery FeedQuery
	primaries map[uuid.UUID]string
	createErr error
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{
		profiles:  make(map[uuid.UUID]*models.Profile),
		primaries: make(map[uuid.UUID]string),
	}
}

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	s.profiles[profile.ID] = profile
	return profile, nil
}

func (s *stubProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubProfileRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	for _, p := range s.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileRepo) UpdateFields(ctx context.Context, id, userID uuid.UUID, fields map[string]any) (int64, error) {
	p, ok := s.profiles[id]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	if city, ok := fields["city"].(string); ok {
		p.City = &city
	}
	if name, ok := fields["full_name"].(string); ok {
		p.FullName = name
	}
	return 1, nil
}

func (s *stubProfileRepo) Feed(ctx context.Context, q FeedQuery) ([]models.Profile, error) {
	s.feedQuery = q
	if q.Limit < len(s.feedRows) {
		return s.feedRows[:q.Limit], nil
	}
	return s.feedRows, nil
}

func (s *stubProfileRepo) PrimaryImageURLs(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.primaries, nil
}

func newProfilesService(t *testing.T, repo profileRepository) *service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return impl
}

func TestCreateProfileAggregate(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	svc := newProfilesService(t, repo)

	city := "Jodhpur"
	caste := "Brahmin"
	address := "12 Ratanada Road"
	dto, err := svc.Create(context.Background(), uuid.New(), CreateProfileInput{
		FullName:    "  Asha Sharma  ",
		Gender:      "Female",
		DateOfBirth: "1998-03-10",
		Gotra:       "Bharadwaj",
		Caste:       &caste,
		City:        &city,
		Address:     &address,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.FullName != "Asha Sharma" {
		t.Fatalf("expected trimmed name, got %q", dto.FullName)
	}
	if dto.Gender != enums.GenderFemale {
		t.Fatalf("unexpected gender %s", dto.Gender)
	}
	if dto.Age != 27 {
		t.Fatalf("expected age 27, got %d", dto.Age)
	}
	if dto.Caste == nil || *dto.Caste != "Brahmin" {
		t.Fatalf("caste not carried: %+v", dto.Caste)
	}
	if dto.Address == nil || *dto.Address != "12 Ratanada Road" {
		t.Fatalf("address not carried: %+v", dto.Address)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	t.Parallel()

	svc := newProfilesService(t, newStubProfileRepo())
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateProfileInput
	}{
		{"bad gender", CreateProfileInput{FullName: "A B", Gender: "X", DateOfBirth: "1990-01-01", Gotra: "G"}},
		{"bad dob format", CreateProfileInput{FullName: "A B", Gender: "Male", DateOfBirth: "01/01/1990", Gotra: "G"}},
		{"under age", CreateProfileInput{FullName: "A B", Gender: "Male", DateOfBirth: "2015-01-01", Gotra: "G"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, uuid.New(), tc.input)
			var appErr *pkgerrors.Error
			if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestFeedComputesDOBBoundsAndCursor(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	svc := newProfilesService(t, repo)

	_, err := svc.Feed(context.Background(), FeedFilters{AgeMin: 25, AgeMax: 35}, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}

	q := repo.feedQuery
	if q.BornBefore == nil || !q.BornBefore.Equal(time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected BornBefore %v", q.BornBefore)
	}
	if q.BornAfter == nil || !q.BornAfter.Equal(time.Date(1989, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected BornAfter %v", q.BornAfter)
	}
	if q.Limit != 11 {
		t.Fatalf("expected buffered limit 11, got %d", q.Limit)
	}
}

func TestFeedNextCursorOnlyWhenMore(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	svc := newProfilesService(t, repo)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		repo.feedRows = append(repo.feedRows, models.Profile{
			ID:          uuid.New(),
			FullName:    "Member",
			Gender:      enums.GenderMale,
			DateOfBirth: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
			Gotra:       "G",
			CreatedAt:   base.Add(-time.Duration(i) * time.Minute),
		})
	}

	page, err := svc.Feed(context.Background(), FeedFilters{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextCursor == nil {
		t.Fatal("expected next cursor when more rows exist")
	}

	cursor, err := pagination.ParseCursor(*page.NextCursor)
	if err != nil {
		t.Fatalf("parse returned cursor: %v", err)
	}
	if cursor.ID != page.Items[1].ProfileID {
		t.Fatalf("cursor should point at the last returned item")
	}

	page, err = svc.Feed(context.Background(), FeedFilters{}, pagination.Params{Limit: 5})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if page.NextCursor != nil {
		t.Fatal("expected no cursor on final page")
	}
}

func TestFeedProjectsPrimaryImage(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	svc := newProfilesService(t, repo)

	withImage := uuid.New()
	repo.feedRows = []models.Profile{
		{ID: withImage, FullName: "A", Gender: enums.GenderFemale, DateOfBirth: time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), Gotra: "G", CreatedAt: time.Now()},
		{ID: uuid.New(), FullName: "B", Gender: enums.GenderFemale, DateOfBirth: time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), Gotra: "G", CreatedAt: time.Now()},
	}
	repo.primaries[withImage] = "https://cdn.test/a.png"

	page, err := svc.Feed(context.Background(), FeedFilters{}, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if page.Items[0].PrimaryImageURL == nil || *page.Items[0].PrimaryImageURL != "https://cdn.test/a.png" {
		t.Fatalf("expected primary image projection")
	}
	if page.Items[1].PrimaryImageURL != nil {
		t.Fatalf("profile without primary must project nil")
	}
}

func TestFeedSortDirection(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	svc := newProfilesService(t, repo)
	ctx := context.Background()

	if _, err := svc.Feed(ctx, FeedFilters{}, pagination.Params{}); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if repo.feedQuery.Ascending {
		t.Fatal("default order must be newest first")
	}

	if _, err := svc.Feed(ctx, FeedFilters{Sort: "asc"}, pagination.Params{}); err != nil {
		t.Fatalf("Feed asc: %v", err)
	}
	if !repo.feedQuery.Ascending {
		t.Fatal("sort=asc must flip the query direction")
	}

	if _, err := svc.Feed(ctx, FeedFilters{Sort: " DESC "}, pagination.Params{}); err != nil {
		t.Fatalf("Feed desc: %v", err)
	}
	if repo.feedQuery.Ascending {
		t.Fatal("sort=desc must keep newest first")
	}

	_, err := svc.Feed(ctx, FeedFilters{Sort: "sideways"}, pagination.Params{})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad sort, got %v", err)
	}
}

func TestFeedRejectsBadFilters(t *testing.T) {
	t.Parallel()

	svc := newProfilesService(t, newStubProfileRepo())
	ctx := context.Background()

	if _, err := svc.Feed(ctx, FeedFilters{AgeMin: 40, AgeMax: 30}, pagination.Params{}); err == nil {
		t.Fatal("expected inverted age range error")
	}
	if _, err := svc.Feed(ctx, FeedFilters{Gender: "unknown"}, pagination.Params{}); err == nil {
		t.Fatal("expected invalid gender error")
	}
	if _, err := svc.Feed(ctx, FeedFilters{}, pagination.Params{Cursor: "!!bad!!"}); err == nil {
		t.Fatal("expected invalid cursor error")
	}
}

func TestUpdateNotFoundForForeignOwner(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	svc := newProfilesService(t, repo)

	profile := &models.Profile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		FullName:    "Owner",
		Gender:      enums.GenderMale,
		DateOfBirth: time.Date(1992, 1, 1, 0, 0, 0, 0, time.UTC),
		Gotra:       "G",
	}
	repo.profiles[profile.ID] = profile

	city := "Jaipur"
	_, err := svc.Update(context.Background(), profile.ID, uuid.New(), UpdateProfileInput{City: &city})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}

	dto, err := svc.Update(context.Background(), profile.ID, profile.UserID, UpdateProfileInput{City: &city})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if dto.City == nil || *dto.City != "Jaipur" {
		t.Fatalf("expected city updated")
	}
}
