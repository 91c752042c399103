package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Rrens/auth-service/internal/apperror"
	"github.com/Rrens/auth-service/internal/domain"
	"github.com/Rrens/auth-service/internal/mailer"
	"github.com/Rrens/auth-service/internal/metrics"
	"github.com/Rrens/auth-service/internal/security"
	"github.com/Rrens/auth-service/internal/validation"
)

// Operation names used in metrics
const (
	OpRegister      = "register"
	OpLogin         = "login"
	OpRefresh       = "refresh"
	OpLogout        = "logout"
	OpSendResetLink = "send_reset_link"
	OpResetPassword = "reset_password"
	OpProfile       = "profile"
)

// Failure messages
const (
	MsgRegisterFailed     = "Unable to register new user, please try again later"
	MsgUserExists         = "User with this email or phone already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgForbidden          = "Forbidden"
	MsgUnauthorized       = "Unauthorized"
	MsgUserNotExists      = "User does not exists"
	MsgSendEmailFailed    = "Failed to send email"
	MsgLinkExpired        = "Link expired! Request new link"
)

// Reset email content
const (
	resetSubject = "Reset password link"
	resetText    = "Click here to reset your password"
	resetHTML    = `<p><b>Please click the link given below to reset your password</b></p><a href="%s">Reset Password</a>`
)

// RegisterResult is the newly created user and its token pair
type RegisterResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// AuthService handles authentication operations
type AuthService struct {
	users     domain.UserRepository
	validator *validation.Validator
	hasher    *security.PasswordHasher
	tokens    *security.TokenService
	mail      mailer.Sender
	resetURL  string
	metrics   *metrics.Metrics
}

// NewAuthService creates a new auth service. resetURL is the page the reset
// email links to; the token is appended as the token query parameter.
func NewAuthService(
	users domain.UserRepository,
	hasher *security.PasswordHasher,
	tokens *security.TokenService,
	mail mailer.Sender,
	resetURL string,
) *AuthService {
	return &AuthService{
		users:     users,
		validator: validation.New(users),
		hasher:    hasher,
		tokens:    tokens,
		mail:      mail,
		resetURL:  resetURL,
	}
}

// WithMetrics records operation outcomes on m
func (s *AuthService) WithMetrics(m *metrics.Metrics) *AuthService {
	s.metrics = m
	return s
}

// Tokens returns the token service
func (s *AuthService) Tokens() *security.TokenService {
	return s.tokens
}

// finish converts err into an *apperror.Error and records the outcome
func (s *AuthService) finish(op string, err error) error {
	s.metrics.ObserveAuth(op, err)
	if err == nil {
		return nil
	}
	return apperror.From(err)
}

// Register creates a new user account and signs it in
func (s *AuthService) Register(ctx context.Context, input domain.RegisterInput) (*RegisterResult, error) {
	res, err := s.register(ctx, input)
	return res, s.finish(OpRegister, err)
}

func (s *AuthService) register(ctx context.Context, input domain.RegisterInput) (*RegisterResult, error) {
	if err := s.validator.Register(ctx, input); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password.String())
	if err != nil {
		return nil, apperror.Internal(MsgRegisterFailed, err)
	}

	user := &domain.User{
		Email:        domain.NormalizeEmail(input.Email.String()),
		PasswordHash: hashed,
		Phone:        input.Phone.String(),
		FirstName:    input.FirstName.String(),
		LastName:     input.LastName.String(),
		Role:         domain.RoleCustomer,
		Gender:       domain.Gender(input.Gender.String()),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			// lost a race with a concurrent registration
			return nil, apperror.Wrap(apperror.KindAlreadyExists, MsgUserExists, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read created user: %w", err)
	}
	if created == nil {
		return nil, apperror.Internal(MsgRegisterFailed, domain.ErrUserNotFound)
	}

	tokens, err := s.tokens.GenerateTokens(security.Payload{UserID: created.ID, Role: created.Role})
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &RegisterResult{User: created, Tokens: tokens}, nil
}

// findByIdentity looks a user up by email when sent, by phone otherwise
func (s *AuthService) findByIdentity(ctx context.Context, email, phone domain.Field, opts ...domain.FindOption) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	if !email.Empty() {
		user, err = s.users.FindByEmail(ctx, domain.NormalizeEmail(email.String()), opts...)
	} else {
		user, err = s.users.FindByPhone(ctx, phone.String(), opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Login authenticates a user by email or phone and returns a token pair
func (s *AuthService) Login(ctx context.Context, input domain.LoginInput) (domain.TokenPair, error) {
	tokens, err := s.login(ctx, input)
	return tokens, s.finish(OpLogin, err)
}

func (s *AuthService) login(ctx context.Context, input domain.LoginInput) (domain.TokenPair, error) {
	if err := s.validator.Login(ctx, input); err != nil {
		return domain.TokenPair{}, err
	}

	user, err := s.findByIdentity(ctx, input.Email, input.Phone, domain.WithPassword())
	if err != nil {
		return domain.TokenPair{}, err
	}

	// same failure for unknown user and wrong password
	if user == nil || !s.hasher.Verify(input.Password.String(), user.PasswordHash) {
		return domain.TokenPair{}, apperror.BadRequest(MsgInvalidCredentials)
	}

	tokens, err := s.tokens.GenerateTokens(security.Payload{UserID: user.ID, Role: user.Role})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return tokens, nil
}

// Refresh issues a new access token for a valid refresh token. The refresh
// token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.refresh(ctx, refreshToken)
	return token, s.finish(OpRefresh, err)
}

func (s *AuthService) refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.Forbidden(MsgForbidden)
	}

	payload, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, payload.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", apperror.Unauthorized(MsgUnauthorized)
	}

	accessToken, err := s.tokens.IssueAccessToken(security.Payload{UserID: user.ID, Role: user.Role})
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout succeeds when a refresh cookie is present. Without one it returns
// a NoContent error so the caller answers 204.
func (s *AuthService) Logout(_ context.Context, refreshToken string) error {
	var err error
	if refreshToken == "" {
		err = apperror.NoContent()
	}
	return s.finish(OpLogout, err)
}

// SendResetLink emails a time-limited password reset link
func (s *AuthService) SendResetLink(ctx context.Context, input domain.ResetLinkInput) error {
	return s.finish(OpSendResetLink, s.sendResetLink(ctx, input))
}

func (s *AuthService) sendResetLink(ctx context.Context, input domain.ResetLinkInput) error {
	if err := s.validator.ResetLink(ctx, input); err != nil {
		return err
	}

	user, err := s.findByIdentity(ctx, input.Email, input.Phone)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.BadRequest(MsgUserNotExists)
	}

	token, err := s.tokens.IssueResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	link, err := s.resetLink(token)
	if err != nil {
		return err
	}

	msg := mailer.Message{
		To:      []mailer.Address{{Name: user.FirstName, Email: user.Email}},
		Subject: resetSubject,
		Text:    resetText,
		HTML:    fmt.Sprintf(resetHTML, link),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return apperror.Internal(MsgSendEmailFailed, err)
	}
	return nil
}

func (s *AuthService) resetLink(token string) (string, error) {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return "", fmt.Errorf("invalid reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ResetPassword sets a new password for the user named by a reset token.
// Tokens are not single-use; any replay within the ttl succeeds.
func (s *AuthService) ResetPassword(ctx context.Context, token string, input domain.ResetPasswordInput) error {
	return s.finish(OpResetPassword, s.resetPassword(ctx, token, input))
}

func (s *AuthService) resetPassword(ctx context.Context, token string, input domain.ResetPasswordInput) error {
	if err := s.validator.ResetPassword(ctx, input); err != nil {
		return err
	}

	userID, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return apperror.Wrap(apperror.KindBadRequest, MsgLinkExpired, err)
	}

	hashed, err := s.hasher.Hash(input.Password.String())
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordByID(ctx, userID, hashed); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperror.Wrap(apperror.KindBadRequest, MsgUserNotExists, err)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Profile returns the user a verified access token belongs to
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		err = fmt.Errorf("failed to get user: %w", err)
	} else if user == nil {
		err = apperror.Unauthorized(MsgUnauthorized)
	}
	if err != nil {
		return nil, s.finish(OpProfile, err)
	}
	return user, s.finish(OpProfile, nil)
}
