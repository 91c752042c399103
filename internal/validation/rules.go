package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rrens/auth-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var nameCharset = regexp.MustCompile(`^[a-zA-Z ]+$`)

// Messages that do not carry a field label
const (
	MsgNameTooShort      = "Must have at least 2 characters"
	MsgNameTooLong       = "Must have a maximum of 32 characters"
	MsgNameCharset       = "Must contain only alphabetic characters"
	MsgPhoneLength       = "Must be 10 digits long"
	MsgPhoneCharset      = "Must contain only numeric characters"
	MsgPhoneLeadingDigit = "Must start with a digit between 6 and 9"
	MsgEmailExists       = "E-mail already exists"
	MsgPhoneExists       = "phone number already exists"
	MsgPasswordMismatch  = "Passwords do not match"
	MsgEitherEmailPhone  = "Either email or phone must be provided"
	MsgGender            = "Must be one of male, female, others"
)

// Rule checks a single field value. It returns a non-empty message when the
// value is rejected and an error only when the check itself could not run.
type Rule func(ctx context.Context, v domain.Field) (string, error)

// UserLookup is the part of the user store the uniqueness rules need
type UserLookup interface {
	FindByEmail(ctx context.Context, email string, opts ...domain.FindOption) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string, opts ...domain.FindOption) (*domain.User, error)
}

func check(ok bool, msg string) (string, error) {
	if ok {
		return "", nil
	}
	return msg, nil
}

func tag(value, tag string) bool {
	return validate.Var(value, tag) == nil
}

// Required rejects missing, null and empty values
func Required(label string) Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(!v.Empty(), label+" cannot be null")
	}
}

// Email rejects values that are not an email address
func Email(label string) Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(tag(strings.TrimSpace(v.Value), "email"), label+" is not valid")
	}
}

// NameLength requires 2 to 32 characters
func NameLength() Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		if !tag(v.Value, "min=2") {
			return MsgNameTooShort, nil
		}
		return check(tag(v.Value, "max=32"), MsgNameTooLong)
	}
}

// NameCharset allows letters and spaces only
func NameCharset() Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(nameCharset.MatchString(v.Value), MsgNameCharset)
	}
}

// PasswordCharset requires at least one lowercase, one uppercase and one digit
func PasswordCharset(label string) Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		var lower, upper, digit bool
		for _, r := range v.Value {
			switch {
			case r >= 'a' && r <= 'z':
				lower = true
			case r >= 'A' && r <= 'Z':
				upper = true
			case r >= '0' && r <= '9':
				digit = true
			}
		}
		return check(lower && upper && digit,
			label+" must have at least 1 uppercase, 1 lowercase, and 1 number character")
	}
}

// PasswordLength requires at least 6 characters
func PasswordLength(label string) Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(tag(v.Value, "min=6"), label+" must be at least 6 characters")
	}
}

// PhoneLength requires exactly 10 characters
func PhoneLength() Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(tag(v.Value, "len=10"), MsgPhoneLength)
	}
}

// PhoneDigits allows ASCII digits only
func PhoneDigits() Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(tag(v.Value, "number"), MsgPhoneCharset)
	}
}

// PhoneLeadingDigit requires the first digit to be between 6 and 9
func PhoneLeadingDigit() Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(v.Value != "" && v.Value[0] >= '6' && v.Value[0] <= '9', MsgPhoneLeadingDigit)
	}
}

// Gender accepts one of the known genders
func Gender() Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		return check(tag(v.Value, fmt.Sprintf("oneof=%s %s %s",
			domain.GenderMale, domain.GenderFemale, domain.GenderOthers)), MsgGender)
	}
}

// UniqueEmail rejects an email that already belongs to a user
func UniqueEmail(users UserLookup) Rule {
	return func(ctx context.Context, v domain.Field) (string, error) {
		existing, err := users.FindByEmail(ctx, domain.NormalizeEmail(v.Value))
		if err != nil {
			return "", fmt.Errorf("failed to check email: %w", err)
		}
		return check(existing == nil, MsgEmailExists)
	}
}

// UniquePhone rejects a phone number that already belongs to a user
func UniquePhone(users UserLookup) Rule {
	return func(ctx context.Context, v domain.Field) (string, error) {
		existing, err := users.FindByPhone(ctx, v.Value)
		if err != nil {
			return "", fmt.Errorf("failed to check phone: %w", err)
		}
		return check(existing == nil, MsgPhoneExists)
	}
}

// Matches requires the value to equal other. It passes when other is empty,
// since that field reports its own error.
func Matches(other domain.Field) Rule {
	return func(_ context.Context, v domain.Field) (string, error) {
		if other.Empty() {
			return "", nil
		}
		return check(v.Value == other.Value, MsgPasswordMismatch)
	}
}

// EitherOf requires at least one of the given fields to be non-empty. The
// checked value itself is ignored.
func EitherOf(fields ...domain.Field) Rule {
	return func(_ context.Context, _ domain.Field) (string, error) {
		for _, f := range fields {
			if !f.Empty() {
				return "", nil
			}
		}
		return MsgEitherEmailPhone, nil
	}
}
