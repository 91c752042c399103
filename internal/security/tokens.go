package security

import (
	"fmt"
	"time"

	"github.com/Rrens/auth-service/internal/domain"
)

// TokenConfig holds the secrets and lifetimes of the three signing domains
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

// TokenService mints and verifies access, refresh and password reset tokens.
// Each domain only ever verifies with its own signer.
type TokenService struct {
	access  *Signer
	refresh *Signer
	reset   *Signer

	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenService creates a token service. now may be nil.
func NewTokenService(cfg TokenConfig, now func() time.Time) *TokenService {
	return &TokenService{
		access:     NewSigner(DomainAccess, cfg.AccessSecret, now),
		refresh:    NewSigner(DomainRefresh, cfg.RefreshSecret, now),
		reset:      NewSigner(DomainReset, cfg.ResetSecret, now),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		resetTTL:   cfg.ResetTTL,
	}
}

// GenerateTokens issues an access and a refresh token from the same payload.
// Either both are returned or neither.
func (s *TokenService) GenerateTokens(p Payload) (domain.TokenPair, error) {
	accessToken, err := s.IssueAccessToken(p)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshToken, err := s.refresh.Issue(p, s.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// IssueAccessToken issues an access token only
func (s *TokenService) IssueAccessToken(p Payload) (string, error) {
	return s.access.Issue(p, s.accessTTL)
}

func (s *TokenService) VerifyAccessToken(token string) (Payload, error) {
	return s.access.Verify(token)
}

func (s *TokenService) VerifyRefreshToken(token string) (Payload, error) {
	return s.refresh.Verify(token)
}

// IssueResetToken issues a password reset token carrying only the user id
func (s *TokenService) IssueResetToken(userID string) (string, error) {
	token, err := s.reset.Issue(Payload{UserID: userID}, s.resetTTL)
	if err != nil {
		return "", fmt.Errorf("reset token: %w", err)
	}
	return token, nil
}

// VerifyResetToken returns the user id of a valid reset token
func (s *TokenService) VerifyResetToken(token string) (string, error) {
	p, err := s.reset.Verify(token)
	if err != nil {
		return "", err
	}
	return p.UserID, nil
}

// RefreshTTL returns the refresh token lifetime, also used as the cookie max-age
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// AccessTTL returns the access token lifetime
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}
