package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/auth-service/internal/apperror"
	"github.com/Rrens/auth-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "auth-service"

// Signing domains
const (
	DomainAccess  = "access"
	DomainRefresh = "refresh"
	DomainReset   = "password-reset"
)

// Payload is the application data carried by a token
type Payload struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role,omitempty"`
}

// Claims represents JWT claims
type Claims struct {
	Payload
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens for a single signing domain
type Signer struct {
	name   string
	secret []byte
	now    func() time.Time
}

// NewSigner creates a signer for the named domain
func NewSigner(name, secret string, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{
		name:   name,
		secret: []byte(secret),
		now:    now,
	}
}

// Name returns the signing domain
func (s *Signer) Name() string {
	return s.name
}

// Issue signs payload with issued-at and expiry claims
func (s *Signer) Issue(p Payload, ttl time.Duration) (string, error) {
	if p.UserID == "" {
		return "", errors.New("payload has no user id")
	}

	now := s.now()
	claims := Claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Audience:  jwt.ClaimStrings{s.name},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", s.name, err)
	}
	return token, nil
}

// Verify checks signature, audience and expiry. Every failure is an InvalidToken error.
func (s *Signer) Verify(tokenString string) (Payload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithAudience(s.name),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Payload{}, apperror.InvalidToken(fmt.Errorf("failed to parse %s token: %w", s.name, err))
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Payload{}, apperror.InvalidToken(errors.New("invalid token"))
	}

	return claims.Payload, nil
}
