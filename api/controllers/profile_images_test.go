package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/api/middleware"
	"github.com/shubhamchhangani/hindu-matrimony/internal/profileimages"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
)

type stubImageService struct {
	deleteFn func(ctx context.Context, profileID, imageID uuid.UUID) error
}

func (s *stubImageService) List(ctx context.Context, profileID uuid.UUID) ([]profileimages.ImageDTO, error) {
	return nil, nil
}

func (s *stubImageService) Add(ctx context.Context, profileID uuid.UUID, input profileimages.AddImageInput) (*profileimages.ImageDTO, error) {
	return &profileimages.ImageDTO{ProfileID: profileID}, nil
}

func (s *stubImageService) Update(ctx context.Context, profileID, imageID uuid.UUID, input profileimages.UpdateImageInput) (*profileimages.ImageDTO, error) {
	return &profileimages.ImageDTO{ID: imageID, ProfileID: profileID}, nil
}

func (s *stubImageService) Delete(ctx context.Context, profileID, imageID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, profileID, imageID)
	}
	return nil
}

func (s *stubImageService) SetPrimary(ctx context.Context, profileID, imageID uuid.UUID, imageType enums.ImageType) error {
	return nil
}

func imageRequest(t *testing.T, ctx context.Context, profileID, imageID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/profiles/"+profileID.String()+"/images/"+imageID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("profileId", profileID.String())
	routeCtx.URLParams.Add("imageId", imageID.String())
	return req.WithContext(context.WithValue(ctx, chi.RouteCtxKey, routeCtx))
}

func TestProfileImageDeleteRejectsForeignProfile(t *testing.T) {
	logg := testLogger()

	called := false
	svc := &stubImageService{deleteFn: func(ctx context.Context, profileID, imageID uuid.UUID) error {
		called = true
		return nil
	}}

	ctx := middleware.WithUserID(context.Background(), uuid.New().String())
	ctx = middleware.WithRole(ctx, enums.UserRoleMember.String())
	ctx = middleware.WithProfileID(ctx, uuid.New().String())
	req := imageRequest(t, ctx, uuid.New(), uuid.New())
	rec := httptest.NewRecorder()

	ProfileImageDelete(svc, logg)(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if called {
		t.Fatal("service must not run for a foreign profile")
	}
}

func TestProfileImageDeleteAdminManagesAnyProfile(t *testing.T) {
	logg := testLogger()

	targetProfile := uuid.New()
	imageID := uuid.New()
	var gotProfile uuid.UUID
	svc := &stubImageService{deleteFn: func(ctx context.Context, profileID, imgID uuid.UUID) error {
		gotProfile = profileID
		return nil
	}}

	// Admins act on the path profile and need no listing of their own.
	ctx := middleware.WithUserID(context.Background(), uuid.New().String())
	ctx = middleware.WithRole(ctx, enums.UserRoleAdmin.String())
	req := imageRequest(t, ctx, targetProfile, imageID)
	rec := httptest.NewRecorder()

	ProfileImageDelete(svc, logg)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotProfile != targetProfile {
		t.Fatalf("expected delete on %s, got %s", targetProfile, gotProfile)
	}
}

func TestProfileImageDeleteOwnerAllowed(t *testing.T) {
	logg := testLogger()

	ownProfile := uuid.New()
	svc := &stubImageService{}

	ctx := middleware.WithUserID(context.Background(), uuid.New().String())
	ctx = middleware.WithRole(ctx, enums.UserRoleMember.String())
	ctx = middleware.WithProfileID(ctx, ownProfile.String())
	req := imageRequest(t, ctx, ownProfile, uuid.New())
	rec := httptest.NewRecorder()

	ProfileImageDelete(svc, logg)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
