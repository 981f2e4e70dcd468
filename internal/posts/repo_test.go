package posts

import (
	"context"
	"fmt"
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
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

func cursorFrom(p models.Post) *pagination.Cursor {
	return &pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

func setupPostsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
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
CREATE TABLE IF NOT EXISTS posts (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  content TEXT NOT NULL,
  image_url TEXT,
  image_path TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS likes (
  id TEXT PRIMARY KEY,
  post_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (post_id, user_id)
);
CREATE TABLE IF NOT EXISTS comments (
  id TEXT PRIMARY KEY,
  post_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedAuthor(t *testing.T, conn *gorm.DB, name string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		FullName:    name,
		Gender:      enums.GenderFemale,
		DateOfBirth: time.Date(1995, 4, 1, 0, 0, 0, 0, time.UTC),
		Gotra:       "Bharadwaj",
	}
	require.NoError(t, conn.Create(profile).Error)
	return profile
}

func seedPost(t *testing.T, repo *Repository, profileID uuid.UUID, content string, createdAt time.Time) *models.Post {
	t.Helper()
	post, err := repo.Create(context.Background(), &models.Post{
		ProfileID: profileID,
		Content:   content,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	return post
}

func TestListPageKeysetOrdering(t *testing.T) {
	conn := setupPostsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	author := seedAuthor(t, conn, "Asha "+uuid.NewString()[:8])
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedPost(t, repo, author.ID, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	firstPage, err := repo.ListPage(ctx, nil, 3)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(firstPage), 3)
	firstPage = firstPage[:3]
	assert.True(t, firstPage[0].CreatedAt.After(firstPage[1].CreatedAt))

	cursor := cursorFrom(firstPage[2])
	secondPage, err := repo.ListPage(ctx, cursor, 3)
	require.NoError(t, err)

	seen := make(map[uuid.UUID]bool)
	for _, p := range firstPage {
		seen[p.ID] = true
	}
	for _, p := range secondPage {
		assert.False(t, seen[p.ID], "pages must not overlap")
	}
}

func TestLikeUniqueConstraintAndToggle(t *testing.T) {
	conn := setupPostsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	author := seedAuthor(t, conn, "Ravi "+uuid.NewString()[:8])
	post := seedPost(t, repo, author.ID, "first post", time.Now().UTC())
	userID := uuid.New()

	require.NoError(t, repo.InsertLike(ctx, post.ID, userID))

	err := repo.InsertLike(ctx, post.ID, userID)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))

	counts, err := repo.LikeCounts(ctx, []uuid.UUID{post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[post.ID])

	affected, err := repo.DeleteLike(ctx, post.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.DeleteLike(ctx, post.ID, userID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestLikedPostIDsScopedToViewer(t *testing.T) {
	conn := setupPostsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	author := seedAuthor(t, conn, "Meera "+uuid.NewString()[:8])
	postA := seedPost(t, repo, author.ID, "a", time.Now().UTC())
	postB := seedPost(t, repo, author.ID, "b", time.Now().UTC())

	viewer := uuid.New()
	other := uuid.New()
	require.NoError(t, repo.InsertLike(ctx, postA.ID, viewer))
	require.NoError(t, repo.InsertLike(ctx, postB.ID, other))

	liked, err := repo.LikedPostIDs(ctx, viewer, []uuid.UUID{postA.ID, postB.ID})
	require.NoError(t, err)
	assert.True(t, liked[postA.ID])
	assert.False(t, liked[postB.ID])
}

func TestCommentsListedOldestFirst(t *testing.T) {
	conn := setupPostsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	author := seedAuthor(t, conn, "Kiran "+uuid.NewString()[:8])
	post := seedPost(t, repo, author.ID, "announcement", time.Now().UTC())

	base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateComment(ctx, &models.Comment{
			PostID:    post.ID,
			UserID:    uuid.New(),
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(2-i) * time.Minute),
		})
		require.NoError(t, err)
	}

	comments, err := repo.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "comment 2", comments[0].Content)
	assert.Equal(t, "comment 0", comments[2].Content)

	counts, err := repo.CommentCounts(ctx, []uuid.UUID{post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[post.ID])
}

func TestAuthorNamesProjection(t *testing.T) {
	conn := setupPostsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	author := seedAuthor(t, conn, "Sunita "+marker)

	names, err := repo.AuthorNames(ctx, []uuid.UUID{author.ID})
	require.NoError(t, err)
	assert.Equal(t, "Sunita "+marker, names[author.ID])
}

func TestDeleteScopedToAuthor(t *testing.T) {
	conn := setupPostsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	author := seedAuthor(t, conn, "Vikram "+uuid.NewString()[:8])
	post := seedPost(t, repo, author.ID, "mine", time.Now().UTC())

	affected, err := repo.Delete(ctx, post.ID, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.Delete(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
