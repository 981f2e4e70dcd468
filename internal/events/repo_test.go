package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

func setupEventsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  gender TEXT NOT NULL,
  date_of_birth DATETIME NOT NULL,
  gotra TEXT NOT NULL,
  caste TEXT,
  phone TEXT,
  city TEXT,
  state TEXT,
  address TEXT,
  education TEXT,
  occupation TEXT,
  annual_income TEXT,
  father_name TEXT,
  mother_name TEXT,
  marital_status TEXT,
  about TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  event_date DATETIME NOT NULL,
  location TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func TestListUpcomingOrderedByDate(t *testing.T) {
	conn := setupEventsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	admin := uuid.New()
	dates := []time.Time{
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		_, err := repo.Create(ctx, &models.Event{
			Title:       marker,
			Description: "d",
			EventDate:   d,
			CreatedBy:   admin,
		})
		require.NoError(t, err, "event %d", i)
	}

	listed, err := repo.ListUpcoming(ctx)
	require.NoError(t, err)

	var mine []models.Event
	for _, e := range listed {
		if e.Title == marker {
			mine = append(mine, e)
		}
	}
	require.Len(t, mine, 3)
	assert.True(t, mine[0].EventDate.Before(mine[1].EventDate))
	assert.True(t, mine[1].EventDate.Before(mine[2].EventDate))
}

func TestUpdateFieldsAndDelete(t *testing.T) {
	conn := setupEventsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Event{
		Title:       "Before",
		Description: "d",
		EventDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:   uuid.New(),
	})
	require.NoError(t, err)

	affected, err := repo.UpdateFields(ctx, created.ID, map[string]any{"title": "After"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", reloaded.Title)

	affected, err = repo.UpdateFields(ctx, uuid.New(), map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrganizerNamesResolvedFromProfiles(t *testing.T) {
	conn := setupEventsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	userID := uuid.New()
	require.NoError(t, conn.Create(&models.Profile{
		ID:          uuid.New(),
		UserID:      userID,
		FullName:    "Organizer " + marker,
		Gender:      enums.GenderMale,
		DateOfBirth: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		Gotra:       "Kashyap",
	}).Error)

	names, err := repo.OrganizerNames(ctx, []uuid.UUID{userID})
	require.NoError(t, err)
	assert.Equal(t, "Organizer "+marker, names[userID])
}
