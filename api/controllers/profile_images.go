package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/api/middleware"
	"github.com/shubhamchhangani/hindu-matrimony/api/responses"
	"github.com/shubhamchhangani/hindu-matrimony/api/validators"
	"github.com/shubhamchhangani/hindu-matrimony/internal/profileimages"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/logger"
)

const multipartMemoryLimit = 8 << 20

// ProfileImagesList returns the owner's photo registry, every type and flag.
func ProfileImagesList(svc profileimages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		profileID, err := parsePathUUID(r, "profileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		images, err := svc.List(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, images)
	}
}

// ProfileImageAdd uploads one photo and registers it under a type.
func ProfileImageAdd(svc profileimages.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		profileID, err := ownProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		imageType, err := enums.ParseImageType(strings.TrimSpace(r.FormValue("image_type")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid image_type"))
			return
		}

		fileName, contentType, data, err := readMultipartImage(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Add(r.Context(), profileID, profileimages.AddImageInput{
			ImageType:   imageType,
			FileName:    fileName,
			ContentType: contentType,
			Data:        data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// ProfileImageUpdate replaces the bytes behind an existing registry entry.
func ProfileImageUpdate(svc profileimages.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		profileID, err := ownProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := parsePathUUID(r, "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fileName, contentType, data, err := readMultipartImage(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), profileID, imageID, profileimages.UpdateImageInput{
			FileName:    fileName,
			ContentType: contentType,
			Data:        data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProfileImageDelete(svc profileimages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		profileID, err := ownProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := parsePathUUID(r, "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), profileID, imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ProfileImageSetPrimary promotes one photo to primary within its type.
func ProfileImageSetPrimary(svc profileimages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable"))
			return
		}

		profileID, err := ownProfileID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := parsePathUUID(r, "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload struct {
			ImageType string `json:"image_type" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageType, err := enums.ParseImageType(strings.TrimSpace(payload.ImageType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid image_type"))
			return
		}

		if err := svc.SetPrimary(r.Context(), profileID, imageID, imageType); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "primary_set"})
	}
}

// ownProfileID resolves the path profile id and checks it belongs to the
// caller's session. Admins can manage any registry.
func ownProfileID(r *http.Request) (uuid.UUID, error) {
	pathID, err := parsePathUUID(r, "profileId")
	if err != nil {
		return uuid.Nil, err
	}
	if middleware.RoleFromContext(r.Context()) == enums.UserRoleAdmin.String() {
		return pathID, nil
	}
	ownID, err := requireProfileID(r)
	if err != nil {
		return uuid.Nil, err
	}
	if pathID != ownID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only manage your own profile")
	}
	return ownID, nil
}

func readMultipartImage(r *http.Request, maxBytes int64) (string, string, []byte, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return "", "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	defer file.Close()

	if maxBytes > 0 && header.Size > maxBytes {
		return "", "", nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return "", "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large")
	}

	return header.Filename, header.Header.Get("Content-Type"), data, nil
}
