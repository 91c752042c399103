package domain

import (
	"bytes"
	"encoding/json"
)

// Field is a request value that remembers whether it was sent and whether it
// was sent as null. Non-string JSON scalars keep their literal text.
type Field struct {
	Sent  bool
	Null  bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler. It is also called for null.
func (f *Field) UnmarshalJSON(data []byte) error {
	f.Sent = true
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		f.Null = true
		f.Value = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &f.Value)
	}

	f.Value = string(data)
	return nil
}

// MarshalJSON implements json.Marshaler
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Sent || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Empty reports whether the field is missing, null or blank
func (f Field) Empty() bool {
	return !f.Sent || f.Null || f.Value == ""
}

// String returns the raw value
func (f Field) String() string {
	return f.Value
}

// Set builds a sent field, mostly for tests
func Set(value string) Field {
	return Field{Sent: true, Value: value}
}

// Null builds a field that was sent as JSON null
func Null() Field {
	return Field{Sent: true, Null: true}
}

// RegisterInput is the registration request body
type RegisterInput struct {
	Email     Field `json:"email"`
	Password  Field `json:"password"`
	Phone     Field `json:"phone"`
	FirstName Field `json:"firstName"`
	LastName  Field `json:"lastName"`
	Gender    Field `json:"gender"`
}

// LoginInput is the login request body. Either Email or Phone identifies the user.
type LoginInput struct {
	Email    Field `json:"email"`
	Phone    Field `json:"phone"`
	Password Field `json:"password"`
}

// ResetLinkInput is the body for requesting a password reset email
type ResetLinkInput struct {
	Email Field `json:"email"`
	Phone Field `json:"phone"`
}

// ResetPasswordInput is the body for setting a new password
type ResetPasswordInput struct {
	Password        Field `json:"password"`
	ConfirmPassword Field `json:"confirmPassword"`
}

// TokenPair is an access token and a refresh token minted from the same payload
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"-"`
}
