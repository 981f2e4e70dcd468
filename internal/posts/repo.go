package posts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

// Repository exposes post, like, and comment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a posts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new post.
func (r *Repository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// FindByID loads a single post.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post scoped to its author. Likes and comments ride
// on the FK cascade.
func (r *Repository) Delete(ctx context.Context, id, profileID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(&models.Post{})
	return res.RowsAffected, res.Error
}

// ListPage returns one keyset page of posts, newest first.
func (r *Repository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Post, error) {
	db := r.db.WithContext(ctx).Model(&models.Post{})
	if cursor != nil {
		db = db.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var posts []models.Post
	err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// LikeCounts aggregates like totals for the given posts.
func (r *Repository) LikeCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByPost(ctx, &models.Like{}, postIDs)
}

// CommentCounts aggregates comment totals for the given posts.
func (r *Repository) CommentCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByPost(ctx, &models.Comment{}, postIDs)
}

type postCount struct {
	PostID uuid.UUID
	Total  int64
}

func (r *Repository) countByPost(ctx context.Context, model any, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	err := r.db.WithContext(ctx).
		Model(model).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.Total
	}
	return out, nil
}

// LikedPostIDs returns which of the given posts the user has liked.
func (r *Repository) LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(postIDs))
	if userID == uuid.Nil || len(postIDs) == 0 {
		return out, nil
	}
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, like := range likes {
		out[like.PostID] = true
	}
	return out, nil
}

// AuthorNames maps profile ids to display names.
func (r *Repository) AuthorNames(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Select("id, full_name").
		Where("id IN ?", profileIDs).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p.FullName
	}
	return out, nil
}

// InsertLike records a like; the unique (post_id, user_id) constraint
// rejects duplicates.
func (r *Repository) InsertLike(ctx context.Context, postID, userID uuid.UUID) error {
	like := &models.Like{ID: uuid.New(), PostID: postID, UserID: userID}
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike removes the user's like from a post.
func (r *Repository) DeleteLike(ctx context.Context, postID, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	return res.RowsAffected, res.Error
}

// CreateComment inserts a reply on a post.
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a post's replies oldest first.
func (r *Repository) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CommenterNames maps commenting users to their profile display names.
func (r *Repository) CommenterNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Select("user_id, full_name").
		Where("user_id IN ?", userIDs).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p.FullName
	}
	return out, nil
}
