package profileimages

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/db/models"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
)

var allowedContentTypes = []string{"image/png", "image/jpeg", "image/webp"}

type imageRepository interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.ProfileImage, error)
	FindByID(ctx context.Context, id, profileID uuid.UUID) (*models.ProfileImage, error)
	Create(ctx context.Context, img *models.ProfileImage) (*models.ProfileImage, error)
	UpdateObject(ctx context.Context, id, profileID uuid.UUID, imageURL, filePath string) (int64, error)
	Delete(ctx context.Context, id, profileID uuid.UUID) (int64, error)
	SetPrimary(ctx context.Context, id, profileID uuid.UUID, imageType enums.ImageType) (int64, error)
}

type objectStore interface {
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string, overwrite bool) error
	Remove(ctx context.Context, bucket string, objects ...string) error
	PublicURL(bucket, object string) string
}

// Service exposes the image registry semantics.
type Service interface {
	List(ctx context.Context, profileID uuid.UUID) ([]ImageDTO, error)
	Add(ctx context.Context, profileID uuid.UUID, input AddImageInput) (*ImageDTO, error)
	Update(ctx context.Context, profileID, imageID uuid.UUID, input UpdateImageInput) (*ImageDTO, error)
	Delete(ctx context.Context, profileID, imageID uuid.UUID) error
	SetPrimary(ctx context.Context, profileID, imageID uuid.UUID, imageType enums.ImageType) error
}

type service struct {
	repo     imageRepository
	store    objectStore
	bucket   string
	maxBytes int64
	now      func() time.Time
}

// NewService constructs the registry service backed by the provided repo and object store.
func NewService(repo imageRepository, store objectStore, bucket string, maxBytes int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("image repository required")
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

func (s *service) List(ctx context.Context, profileID uuid.UUID) ([]ImageDTO, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile identity missing")
	}
	images, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profile images")
	}
	return fromModels(images), nil
}

// Add uploads the object first and records it second. A failed insert
// leaves the uploaded object behind; callers see the error and may retry.
func (s *service) Add(ctx context.Context, profileID uuid.UUID, input AddImageInput) (*ImageDTO, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile identity missing")
	}
	if err := s.validateUpload(input.ImageType, input.FileName, input.ContentType, input.Data); err != nil {
		return nil, err
	}

	filePath := s.buildObjectPath(profileID, input.ImageType, input.FileName)
	if err := s.store.Upload(ctx, s.bucket, filePath, input.Data, input.ContentType, false); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image object")
	}

	img := &models.ProfileImage{
		ProfileID: profileID,
		ImageType: input.ImageType,
		ImageURL:  s.store.PublicURL(s.bucket, filePath),
		FilePath:  filePath,
	}
	created, err := s.repo.Create(ctx, img)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist image record")
	}
	return FromModel(created), nil
}

// Update uploads a replacement under a fresh timestamped path and points
// the record at it. The previous object stays in the bucket.
func (s *service) Update(ctx context.Context, profileID, imageID uuid.UUID, input UpdateImageInput) (*ImageDTO, error) {
	if profileID == uuid.Nil || imageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image identity missing")
	}

	existing, err := s.repo.FindByID(ctx, imageID, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image record")
	}

	if err := s.validateUpload(existing.ImageType, input.FileName, input.ContentType, input.Data); err != nil {
		return nil, err
	}

	filePath := s.buildObjectPath(profileID, existing.ImageType, input.FileName)
	if err := s.store.Upload(ctx, s.bucket, filePath, input.Data, input.ContentType, false); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload replacement object")
	}

	imageURL := s.store.PublicURL(s.bucket, filePath)
	affected, err := s.repo.UpdateObject(ctx, imageID, profileID, imageURL, filePath)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update image record")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}

	existing.ImageURL = imageURL
	existing.FilePath = filePath
	return FromModel(existing), nil
}

// Delete removes the object before the record. A record-delete failure
// after a successful object removal leaves a row pointing at nothing.
func (s *service) Delete(ctx context.Context, profileID, imageID uuid.UUID) error {
	if profileID == uuid.Nil || imageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image identity missing")
	}

	existing, err := s.repo.FindByID(ctx, imageID, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image record")
	}

	if err := s.store.Remove(ctx, s.bucket, existing.FilePath); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove image object")
	}

	affected, err := s.repo.Delete(ctx, imageID, profileID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image record")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return nil
}

func (s *service) SetPrimary(ctx context.Context, profileID, imageID uuid.UUID, imageType enums.ImageType) error {
	if profileID == uuid.Nil || imageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image identity missing")
	}
	if !imageType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid image type")
	}

	flagged, err := s.repo.SetPrimary(ctx, imageID, profileID, imageType)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set primary image")
	}
	if flagged == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return nil
}

func (s *service) validateUpload(imageType enums.ImageType, fileName, contentType string, data []byte) error {
	if !imageType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid image type")
	}
	if strings.TrimSpace(fileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if len(data) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if int64(len(data)) > s.maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	for _, candidate := range allowedContentTypes {
		if strings.EqualFold(candidate, contentType) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "content type not allowed")
}

// buildObjectPath yields "<profileID>/<type>_<unixms>.<ext>" so every
// upload gets a distinct object name.
func (s *service) buildObjectPath(profileID uuid.UUID, imageType enums.ImageType, fileName string) string {
	ext := strings.TrimPrefix(path.Ext(strings.TrimSpace(fileName)), ".")
	if ext == "" {
		ext = "bin"
	}
	stamp := s.now().UnixMilli()
	return fmt.Sprintf("%s/%s_%d.%s", profileID, imageType, stamp, strings.ToLower(ext))
}
