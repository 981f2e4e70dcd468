package posts

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

const maxContentLength = 5000

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp"}

type postRepository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Delete(ctx context.Context, id, profileID uuid.UUID) (int64, error)
	ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Post, error)
	LikeCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	CommentCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	AuthorNames(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID]string, error)
	InsertLike(ctx context.Context, postID, userID uuid.UUID) error
	DeleteLike(ctx context.Context, postID, userID uuid.UUID) (int64, error)
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	CommenterNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type objectStore interface {
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string, overwrite bool) error
	Remove(ctx context.Context, bucket string, objects ...string) error
	PublicURL(bucket, object string) string
}

// Service exposes the community feed semantics.
type Service interface {
	List(ctx context.Context, viewerUserID uuid.UUID, page pagination.Params) (*PostPage, error)
	Create(ctx context.Context, profileID uuid.UUID, input CreatePostInput) (*PostDTO, error)
	Delete(ctx context.Context, postID, profileID uuid.UUID) error
	ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*ToggleLikeResult, error)
	AddComment(ctx context.Context, postID, userID uuid.UUID, content string) (*CommentDTO, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]CommentDTO, error)
}

type service struct {
	repo     postRepository
	store    objectStore
	bucket   string
	maxBytes int64
	now      func() time.Time
}

// NewService constructs the posts service.
func NewService(repo postRepository, store objectStore, bucket string, maxBytes int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("post repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{
		repo:     repo,
		store:    store,
		bucket:   bucket,
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, viewerUserID uuid.UUID, page pagination.Params) (*PostPage, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.ListPage(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	postIDs := make([]uuid.UUID, 0, len(rows))
	authorIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		postIDs = append(postIDs, row.ID)
		authorIDs = append(authorIDs, row.ProfileID)
	}

	likeCounts, err := s.repo.LikeCounts(ctx, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	commentCounts, err := s.repo.CommentCounts(ctx, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count comments")
	}
	liked, err := s.repo.LikedPostIDs(ctx, viewerUserID, postIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load viewer likes")
	}
	authors, err := s.repo.AuthorNames(ctx, authorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load author names")
	}

	items := make([]PostDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, PostDTO{
			ID:           row.ID,
			ProfileID:    row.ProfileID,
			AuthorName:   authors[row.ProfileID],
			Content:      row.Content,
			ImageURL:     row.ImageURL,
			LikeCount:    likeCounts[row.ID],
			CommentCount: commentCounts[row.ID],
			LikedByMe:    liked[row.ID],
			CreatedAt:    row.CreatedAt,
		})
	}

	out := &PostPage{Items: items}
	if hasMore {
		out.NextCursor = nextCursorFor(items, limit)
	}
	return out, nil
}

// Create persists a post, uploading its image first when one is attached.
// A failed insert after a successful upload leaves the object behind.
func (s *service) Create(ctx context.Context, profileID uuid.UUID, input CreatePostInput) (*PostDTO, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile identity missing")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if len(content) > maxContentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content too long")
	}

	post := &models.Post{
		ProfileID: profileID,
		Content:   content,
	}

	if len(input.Data) > 0 {
		if err := s.validateImage(input); err != nil {
			return nil, err
		}
		filePath := s.buildObjectPath(profileID, input.FileName)
		if err := s.store.Upload(ctx, s.bucket, filePath, input.Data, input.ContentType, false); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload post image")
		}
		url := s.store.PublicURL(s.bucket, filePath)
		post.ImageURL = &url
		post.ImagePath = &filePath
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist post")
	}

	return &PostDTO{
		ID:        created.ID,
		ProfileID: created.ProfileID,
		Content:   created.Content,
		ImageURL:  created.ImageURL,
		CreatedAt: created.CreatedAt,
	}, nil
}

// Delete removes the post's image object first, then the row. Engagement
// rows go with the post via cascade.
func (s *service) Delete(ctx context.Context, postID, profileID uuid.UUID) error {
	if postID == uuid.Nil || profileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "post identity missing")
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	if post.ProfileID != profileID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author can delete a post")
	}

	if post.ImagePath != nil && *post.ImagePath != "" {
		if err := s.store.Remove(ctx, s.bucket, *post.ImagePath); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove post image")
		}
	}

	affected, err := s.repo.Delete(ctx, postID, profileID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete post")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return nil
}

// ToggleLike flips the viewer's like. The unique constraint arbitrates
// races: a concurrent duplicate insert resolves to an unlike.
func (s *service) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*ToggleLikeResult, error) {
	if postID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "like identity missing")
	}

	if _, err := s.repo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}

	err := s.repo.InsertLike(ctx, postID, userID)
	if err == nil {
		return &ToggleLikeResult{PostID: postID, Liked: true}, nil
	}
	if !db.IsUniqueViolation(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert like")
	}

	if _, err := s.repo.DeleteLike(ctx, postID, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete like")
	}
	return &ToggleLikeResult{PostID: postID, Liked: false}, nil
}

func (s *service) AddComment(ctx context.Context, postID, userID uuid.UUID, content string) (*CommentDTO, error) {
	if postID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment identity missing")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if len(content) > maxContentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content too long")
	}

	if _, err := s.repo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}

	comment, err := s.repo.CreateComment(ctx, &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist comment")
	}

	names, err := s.repo.CommenterNames(ctx, []uuid.UUID{userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load commenter name")
	}

	dto := fromCommentModel(comment, names[userID])
	return &dto, nil
}

func (s *service) ListComments(ctx context.Context, postID uuid.UUID) ([]CommentDTO, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post identity missing")
	}

	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}

	userIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	names, err := s.repo.CommenterNames(ctx, userIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load commenter names")
	}

	out := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, fromCommentModel(&comments[i], names[comments[i].UserID]))
	}
	return out, nil
}

func (s *service) validateImage(input CreatePostInput) error {
	if strings.TrimSpace(input.FileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if int64(len(input.Data)) > s.maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	for _, candidate := range allowedImageTypes {
		if strings.EqualFold(candidate, input.ContentType) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "content type not allowed")
}

func (s *service) buildObjectPath(profileID uuid.UUID, fileName string) string {
	ext := strings.TrimPrefix(path.Ext(strings.TrimSpace(fileName)), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/post_%d.%s", profileID, s.now().UnixMilli(), strings.ToLower(ext))
}
