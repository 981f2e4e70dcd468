package profileimages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

// Repository exposes registry persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an image registry repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByProfile returns every registry entry for the profile, newest first.
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.ProfileImage, error) {
	var images []models.ProfileImage
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// FindByID loads one entry scoped to the owning profile.
func (r *Repository) FindByID(ctx context.Context, id, profileID uuid.UUID) (*models.ProfileImage, error) {
	var img models.ProfileImage
	err := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Create inserts a new registry entry.
func (r *Repository) Create(ctx context.Context, img *models.ProfileImage) (*models.ProfileImage, error) {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

// UpdateObject rewrites the stored URL and path for one entry.
func (r *Repository) UpdateObject(ctx context.Context, id, profileID uuid.UUID, imageURL, filePath string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProfileImage{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Updates(map[string]any{
			"image_url": imageURL,
			"file_path": filePath,
		})
	return res.RowsAffected, res.Error
}

// Delete removes one entry scoped to the owning profile.
func (r *Repository) Delete(ctx context.Context, id, profileID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(&models.ProfileImage{})
	return res.RowsAffected, res.Error
}

// SetPrimary atomically clears the type's primary flag across the profile
// and sets it on the requested image. Both statements run in one
// transaction so no interleaving can observe two primaries. Returns the
// number of rows flagged (zero when the image is not in the profile's
// partition for that type).
func (r *Repository) SetPrimary(ctx context.Context, id, profileID uuid.UUID, imageType enums.ImageType) (int64, error) {
	column := flagColumn(imageType)
	var flagged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProfileImage{}).
			Where("profile_id = ? AND image_type = ?", profileID, imageType).
			UpdateColumn(column, false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.ProfileImage{}).
			Where("id = ? AND profile_id = ? AND image_type = ?", id, profileID, imageType).
			UpdateColumn(column, true)
		if res.Error != nil {
			return res.Error
		}
		flagged = res.RowsAffected
		if flagged == 0 {
			// Roll back the clearing pass so a bad id leaves flags untouched.
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	return flagged, err
}

func flagColumn(imageType enums.ImageType) string {
	if imageType == enums.ImageTypeHouse {
		return "is_primary_house"
	}
	return "is_primary_profile"
}
