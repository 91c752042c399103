package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Rrens/auth-service/internal/api/middleware"
	"github.com/Rrens/auth-service/internal/api/response"
	"github.com/Rrens/auth-service/internal/apperror"
	"github.com/Rrens/auth-service/internal/domain"
	"github.com/Rrens/auth-service/internal/service"
)

// Success messages
const (
	MsgRegistered    = "User registration successful"
	MsgLoggedIn      = "successfully logged in"
	MsgLoggedOut     = "Logout successful"
	MsgResetLinkSent = "Reset password link sent successfully on your email"
	MsgPasswordReset = "Password updated successfully"
)

// CookieConfig controls the refresh token cookie
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieConfig
	dev         bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig, dev bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, dev: dev}
}

type registerResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// decode reads a JSON body into dst. An empty body decodes as {} so the
// validators report the missing fields.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Wrap(apperror.KindBadRequest, "invalid request body", err)
	}
	return nil
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.RegisterInput
	if err := decode(r, &input); err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	result, err := h.authService.Register(r.Context(), input)
	if err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	h.setRefreshCookie(w, result.Tokens.RefreshToken)
	response.Created(w, registerResponse{
		Success: true,
		Message: MsgRegistered,
		User:    result.User,
		Token:   result.Tokens.AccessToken,
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.LoginInput
	if err := decode(r, &input); err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	response.OK(w, loginResponse{Success: true, Message: MsgLoggedIn, Token: tokens.AccessToken})
}

// Refresh issues a new access token from the refresh cookie
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := h.authService.Refresh(r.Context(), h.refreshCookie(r))
	if err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	response.OK(w, refreshResponse{Token: token})
}

// Logout clears the refresh cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), h.refreshCookie(r)); err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	h.clearRefreshCookie(w)
	response.Success(w, MsgLoggedOut)
}

// SendResetLink emails a password reset link
func (h *AuthHandler) SendResetLink(w http.ResponseWriter, r *http.Request) {
	var input domain.ResetLinkInput
	if err := decode(r, &input); err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	if err := h.authService.SendResetLink(r.Context(), input); err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	response.Success(w, MsgResetLinkSent)
}

// ResetPassword sets a new password using the token query parameter
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input domain.ResetPasswordInput
	if err := decode(r, &input); err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	token := r.URL.Query().Get("token")
	if err := h.authService.ResetPassword(r.Context(), token, input); err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	response.Success(w, MsgPasswordReset)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	payload, ok := middleware.GetPayload(r.Context())
	if !ok {
		response.Error(w, r, apperror.Unauthorized(service.MsgUnauthorized), h.dev)
		return
	}

	user, err := h.authService.Profile(r.Context(), payload.UserID)
	if err != nil {
		response.Error(w, r, err, h.dev)
		return
	}

	response.OK(w, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (h *AuthHandler) refreshCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}
