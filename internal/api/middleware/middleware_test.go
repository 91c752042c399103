package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/auth-service/internal/api/middleware"
	"github.com/Rrens/auth-service/internal/domain"
	"github.com/Rrens/auth-service/internal/metrics"
	"github.com/Rrens/auth-service/internal/security"
)

func newTokens() *security.TokenService {
	return security.NewTokenService(security.TokenConfig{
		AccessSecret:  "access-secret-key-with-32-chars!",
		RefreshSecret: "refresh-secret-key-with-32-char!",
		ResetSecret:   "reset-secret-key-with-32-chars!!",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		ResetTTL:      15 * time.Minute,
	}, nil)
}

func payloadEcho(w http.ResponseWriter, r *http.Request) {
	payload, ok := middleware.GetPayload(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(payload.UserID))
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokens()
	handler := middleware.NewAuthMiddleware(tokens, false).Authenticate(http.HandlerFunc(payloadEcho))

	access, err := tokens.IssueAccessToken(security.Payload{UserID: "user-1", Role: domain.RoleCustomer})
	require.NoError(t, err)
	pair, err := tokens.GenerateTokens(security.Payload{UserID: "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"malformed token", "Bearer not-a-jwt", 498},
		{"refresh token rejected", "Bearer " + pair.RefreshToken, 498},
		{"valid", "Bearer " + access, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", rec.Body.String())
			}
		})
	}
}

type fakeLimiter struct {
	limit int
	hits  map[string]int
	err   error
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	if f.err != nil {
		return false, 0, time.Time{}, f.err
	}
	f.hits[key]++
	remaining := f.limit - f.hits[key]
	if remaining < 0 {
		remaining = 0
	}
	return f.hits[key] <= f.limit, remaining, time.Now().Add(time.Minute), nil
}

func (f *fakeLimiter) Limit() int {
	return f.limit
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{limit: 2, hits: map[string]int{}}
	m := metrics.New()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.NewRateLimitMiddleware(limiter, middleware.LoginLimitMessage, m, false).Limit(next)

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000").Code)
	rec := send("10.0.0.1:5001")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	rec = send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"Too many login attempts, please try again after 60 seconds"}`, rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitBlocks))

	// a different client has its own budget
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000").Code)
	assert.Equal(t, 3, limiter.hits["10.0.0.1"])
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &fakeLimiter{limit: 1, err: errors.New("redis: connection refused")}
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler := middleware.NewRateLimitMiddleware(limiter, middleware.LoginLimitMessage, nil, false).Limit(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogger(t *testing.T) {
	var reqBuf, errBuf bytes.Buffer
	reqLog := zerolog.New(&reqBuf)
	errLog := zerolog.New(&errBuf)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(reqLog, errLog))
	r.Get("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Warn().Msg("from handler")
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3500")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(reqBuf.Bytes(), &line))
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/api/v1/health", line["path"])
	assert.Equal(t, "http://localhost:3500", line["origin"])
	assert.Equal(t, float64(http.StatusAccepted), line["status"])
	assert.NotEmpty(t, line["request_id"])

	var errLine map[string]any
	require.NoError(t, json.Unmarshal(errBuf.Bytes(), &errLine))
	assert.Equal(t, "from handler", errLine["message"])
	assert.Equal(t, line["request_id"], errLine["request_id"])
}
