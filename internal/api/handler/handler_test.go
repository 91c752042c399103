package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/auth-service/internal/api/handler"
	"github.com/Rrens/auth-service/internal/mailer"
	"github.com/Rrens/auth-service/internal/repository/memory"
	"github.com/Rrens/auth-service/internal/security"
	"github.com/Rrens/auth-service/internal/service"
)

type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error {
	return p.err
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", response["status"])
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name   string
		deps   map[string]handler.Pinger
		status int
	}{
		{"all up", map[string]handler.Pinger{"store": pinger{}, "redis": pinger{}}, http.StatusOK},
		{"store down", map[string]handler.Pinger{"store": pinger{err: errors.New("down")}}, http.StatusServiceUnavailable},
		{"no deps", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ReadyCheck(tt.deps)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func newAuthHandler() *handler.AuthHandler {
	tokens := security.NewTokenService(security.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		ResetSecret:   "reset-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      15 * time.Minute,
	}, nil)
	svc := service.NewAuthService(
		memory.NewUserRepository(),
		security.NewPasswordHasher(bcrypt.MinCost),
		tokens,
		mailer.NewRecorder(nil),
		"http://localhost:3500/reset-password",
	)
	return handler.NewAuthHandler(svc, handler.CookieConfig{
		Name:   "jwt",
		Secure: true,
		MaxAge: tokens.RefreshTTL(),
	}, false)
}

func TestAuthHandler_RegisterSetsCookie(t *testing.T) {
	h := newAuthHandler()

	body := `{"email":"john@mail.com","password":"Password@1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "jwt" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteNoneMode {
		t.Errorf("unexpected cookie attributes: %+v", c)
	}
	if c.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("expected max-age of the refresh ttl, got %d", c.MaxAge)
	}
}

func TestAuthHandler_LoginWithoutBody(t *testing.T) {
	h := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", http.NoBody)
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var response struct {
		Errors struct {
			ValidationErrors map[string]string `json:"validationErrors"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Errors.ValidationErrors["error"] != "Either email or phone must be provided" {
		t.Errorf("unexpected validation errors: %v", response.Errors.ValidationErrors)
	}
}

func TestAuthHandler_MeWithoutPayload(t *testing.T) {
	h := newAuthHandler()

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

// BenchmarkLogin benchmarks a successful login through the handler
func BenchmarkLogin(b *testing.B) {
	h := newAuthHandler()

	register := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"bench@mail.com","password":"Password@1"}`))
	h.Register(httptest.NewRecorder(), register)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"bench@mail.com","password":"Password@1"}`))
		h.Login(httptest.NewRecorder(), req)
	}
}
