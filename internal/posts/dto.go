package posts

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

// PostDTO is one feed entry with its engagement projections.
type PostDTO struct {
	ID           uuid.UUID `json:"id"`
	ProfileID    uuid.UUID `json:"profile_id"`
	AuthorName   string    `json:"author_name"`
	Content      string    `json:"content"`
	ImageURL     *string   `json:"image_url,omitempty"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	LikedByMe    bool      `json:"liked_by_me"`
	CreatedAt    time.Time `json:"created_at"`
}

// PostPage carries one page of posts plus the next cursor.
type PostPage struct {
	Items      []PostDTO `json:"items"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

// CreatePostInput models a new post; the image is optional.
type CreatePostInput struct {
	Content     string
	FileName    string
	ContentType string
	Data        []byte
}

// ToggleLikeResult reports the state after a like toggle.
type ToggleLikeResult struct {
	PostID uuid.UUID `json:"post_id"`
	Liked  bool      `json:"liked"`
}

// CommentDTO is one reply on a post.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func fromCommentModel(c *models.Comment, authorName string) CommentDTO {
	return CommentDTO{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		AuthorName: authorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

func nextCursorFor(items []PostDTO, limit int) *string {
	if len(items) < limit {
		return nil
	}
	last := items[len(items)-1]
	encoded := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: last.CreatedAt,
		ID:        last.ID,
	})
	return &encoded
}
