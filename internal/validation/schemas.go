package validation

import (
	"context"

	"github.com/Rrens/auth-service/internal/domain"
)

// Field labels used in messages
const (
	LabelEmail           = "E-mail"
	LabelPassword        = "Password"
	LabelConfirmPassword = "Confirm Password"
	LabelPhone           = "Phone"
)

// Validator holds the per-endpoint schemas
type Validator struct {
	users UserLookup
}

// New creates a validator backed by users for uniqueness checks
func New(users UserLookup) *Validator {
	return &Validator{users: users}
}

func passwordRules(label string) []Rule {
	return []Rule{Required(label), PasswordCharset(label), PasswordLength(label)}
}

func phoneFormatRules() []Rule {
	return []Rule{PhoneLength(), PhoneDigits(), PhoneLeadingDigit()}
}

// Register validates a registration request
func (v *Validator) Register(ctx context.Context, in domain.RegisterInput) error {
	return Run(ctx,
		Field("email", in.Email, Required(LabelEmail), Email(LabelEmail), UniqueEmail(v.users)),
		Field("password", in.Password, passwordRules(LabelPassword)...),
		Field("phone", in.Phone, append(phoneFormatRules(), UniquePhone(v.users))...).IfSent(),
		Field("firstName", in.FirstName, NameLength(), NameCharset()).Optional(),
		Field("lastName", in.LastName, NameLength(), NameCharset()).Optional(),
		Field("gender", in.Gender, Gender()).Optional(),
	)
}

func identityChecks(email, phone domain.Field) []Check {
	return []Check{
		Field("email", email, Required(LabelEmail), Email(LabelEmail)).IfSent(),
		Field("phone", phone, append([]Rule{Required(LabelPhone)}, phoneFormatRules()...)...).IfSent(),
		Field(KeyEither, domain.Field{}, EitherOf(email, phone)),
	}
}

// Login validates a login request
func (v *Validator) Login(ctx context.Context, in domain.LoginInput) error {
	checks := identityChecks(in.Email, in.Phone)
	checks = append(checks, Field("password", in.Password, passwordRules(LabelPassword)...))
	return Run(ctx, checks...)
}

// ResetLink validates a request for a password reset email
func (v *Validator) ResetLink(ctx context.Context, in domain.ResetLinkInput) error {
	return Run(ctx, identityChecks(in.Email, in.Phone)...)
}

// ResetPassword validates a new password and its confirmation
func (v *Validator) ResetPassword(ctx context.Context, in domain.ResetPasswordInput) error {
	return Run(ctx,
		Field("password", in.Password, passwordRules(LabelPassword)...),
		Field("confirmPassword", in.ConfirmPassword,
			append(passwordRules(LabelConfirmPassword), Matches(in.Password))...),
	)
}
