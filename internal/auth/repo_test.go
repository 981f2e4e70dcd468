package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'member',
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
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
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func TestCreateUserEnforcesUniqueEmail(t *testing.T) {
	conn := setupAuthTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	email := uuid.NewString()[:8] + "@example.com"
	created, err := repo.CreateUser(ctx, &models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         enums.UserRoleMember,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	_, err = repo.CreateUser(ctx, &models.User{
		Email:        email,
		PasswordHash: "hash2",
		Role:         enums.UserRoleMember,
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestTouchLastLogin(t *testing.T) {
	conn := setupAuthTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, &models.User{
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "hash",
		Role:         enums.UserRoleMember,
	})
	require.NoError(t, err)
	require.Nil(t, created.LastLoginAt)

	at := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, created.ID, at))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, reloaded.LastLoginAt.Equal(at))
}

func TestProfileIDByUser(t *testing.T) {
	conn := setupAuthTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	got, err := repo.ProfileIDByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	profileID := uuid.New()
	require.NoError(t, conn.Create(&models.Profile{
		ID:          profileID,
		UserID:      userID,
		FullName:    "Asha",
		Gender:      enums.GenderFemale,
		DateOfBirth: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
		Gotra:       "Bharadwaj",
	}).Error)

	got, err = repo.ProfileIDByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, profileID, *got)
}
