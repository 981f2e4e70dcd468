package profiles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/pagination"
)

// FeedQuery is the repo-level shape of a feed request. Date bounds are
// precomputed by the service from the requested age range.
type FeedQuery struct {
	Name       string
	Gotra      string
	Gender     string
	BornBefore *time.Time
	BornAfter  *time.Time
	Ascending  bool
	Cursor     *pagination.Cursor
	Limit      int
}

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile.
func (r *Repository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByID loads a profile by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserID loads the profile owned by the given user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateFields applies a partial column update scoped to the owner.
func (r *Repository) UpdateFields(ctx context.Context, id, userID uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Feed returns one keyset page of profiles matching the query, newest
// first unless Ascending is set.
func (r *Repository) Feed(ctx context.Context, q FeedQuery) ([]models.Profile, error) {
	db := r.db.WithContext(ctx).Model(&models.Profile{})

	if q.Name != "" {
		db = db.Where("LOWER(full_name) LIKE ?", "%"+normalizeLike(q.Name)+"%")
	}
	if q.Gotra != "" {
		db = db.Where("gotra = ?", q.Gotra)
	}
	if q.Gender != "" {
		db = db.Where("gender = ?", q.Gender)
	}
	if q.BornBefore != nil {
		db = db.Where("date_of_birth <= ?", *q.BornBefore)
	}
	if q.BornAfter != nil {
		db = db.Where("date_of_birth > ?", *q.BornAfter)
	}

	// The cursor comparison must point the same way as the sort.
	order := "created_at DESC, id DESC"
	cursorCond := "(created_at < ?) OR (created_at = ? AND id < ?)"
	if q.Ascending {
		order = "created_at ASC, id ASC"
		cursorCond = "(created_at > ?) OR (created_at = ? AND id > ?)"
	}
	if q.Cursor != nil {
		db = db.Where(cursorCond, q.Cursor.CreatedAt, q.Cursor.CreatedAt, q.Cursor.ID)
	}

	var profiles []models.Profile
	err := db.Order(order).
		Limit(q.Limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// PrimaryImageURLs returns the primary profile-photo URL per profile id.
func (r *Repository) PrimaryImageURLs(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(profileIDs) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	var rows []models.ProfileImage
	err := r.db.WithContext(ctx).
		Where("profile_id IN ? AND is_primary_profile = ?", profileIDs, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		out[row.ProfileID] = row.ImageURL
	}
	return out, nil
}

func normalizeLike(value string) string {
	replacer := strings.NewReplacer("%", "", "_", "", "\\", "")
	return strings.ToLower(replacer.Replace(value))
}
