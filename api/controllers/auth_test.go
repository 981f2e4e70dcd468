package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shubhamchhangani/hindu-matrimony/internal/auth"
	pkgerrors "github.com/shubhamchhangani/hindu-matrimony/pkg/errors"
)

type stubAuthService struct {
	result *auth.AuthResult
	tokens *auth.AuthTokens
	err    error

	loggedOut []string
}

func (s *stubAuthService) Signup(ctx context.Context, input auth.SignupInput) (*auth.AuthResult, error) {
	return s.result, s.err
}

func (s *stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.AuthResult, error) {
	return s.result, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, input auth.RefreshInput) (*auth.AuthTokens, error) {
	return s.tokens, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOut = append(s.loggedOut, accessToken)
	return s.err
}

func TestAuthSignupSuccess(t *testing.T) {
	svc := &stubAuthService{result: &auth.AuthResult{
		User: auth.UserDTO{ID: uuid.New(), Email: "asha@example.com"},
		Tokens: auth.AuthTokens{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    900,
		},
	}}
	handler := AuthSignup(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte(`{"email":"asha@example.com","password":"Secret#123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User.Email != "asha@example.com" {
		t.Fatalf("expected user in payload got %+v", envelope.Data)
	}
	if envelope.Data.Tokens.AccessToken != "access-token" {
		t.Fatalf("expected token pair in payload got %+v", envelope.Data)
	}
}

func TestAuthSignupInvalidPayload(t *testing.T) {
	handler := AuthSignup(&stubAuthService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader([]byte(`{"password":"Secret#123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"asha@example.com","password":"wrong-pass"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRefreshReturnsNewPair(t *testing.T) {
	svc := &stubAuthService{tokens: &auth.AuthTokens{AccessToken: "next-access", RefreshToken: "next-refresh"}}
	handler := AuthRefresh(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader([]byte(`{"access_token":"stale","refresh_token":"current"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "next-access" {
		t.Fatalf("expected rotated pair got %+v", envelope.Data)
	}
}

func TestAuthLogoutRevokesToken(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", bytes.NewReader([]byte(`{"access_token":"current-access"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "current-access" {
		t.Fatalf("expected logout to receive the token, got %v", svc.loggedOut)
	}
}
