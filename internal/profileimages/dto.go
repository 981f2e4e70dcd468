package profileimages

import (
	"time"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

// ImageDTO is the transport shape for one registry entry.
type ImageDTO struct {
	ID               uuid.UUID       `json:"id"`
	ProfileID        uuid.UUID       `json:"profile_id"`
	ImageType        enums.ImageType `json:"image_type"`
	ImageURL         string          `json:"image_url"`
	FilePath         string          `json:"file_path"`
	IsPrimaryProfile bool            `json:"is_primary_profile"`
	IsPrimaryHouse   bool            `json:"is_primary_house"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AddImageInput models a new upload.
type AddImageInput struct {
	ImageType   enums.ImageType
	FileName    string
	ContentType string
	Data        []byte
}

// UpdateImageInput models a replacement upload for an existing entry.
type UpdateImageInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

func FromModel(img *models.ProfileImage) *ImageDTO {
	if img == nil {
		return nil
	}
	return &ImageDTO{
		ID:               img.ID,
		ProfileID:        img.ProfileID,
		ImageType:        img.ImageType,
		ImageURL:         img.ImageURL,
		FilePath:         img.FilePath,
		IsPrimaryProfile: img.IsPrimaryProfile,
		IsPrimaryHouse:   img.IsPrimaryHouse,
		CreatedAt:        img.CreatedAt,
	}
}

func fromModels(imgs []models.ProfileImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(imgs))
	for i := range imgs {
		out = append(out, *FromModel(&imgs[i]))
	}
	return out
}
