package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/Rrens/auth-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_UnmarshalJSON(t *testing.T) {
	var input domain.LoginInput
	body := `{"email": null, "password": "Password@1"}`

	require.NoError(t, json.Unmarshal([]byte(body), &input))

	assert.True(t, input.Email.Sent)
	assert.True(t, input.Email.Null)
	assert.True(t, input.Email.Empty())

	assert.False(t, input.Phone.Sent)
	assert.True(t, input.Phone.Empty())

	assert.True(t, input.Password.Sent)
	assert.Equal(t, "Password@1", input.Password.String())
	assert.False(t, input.Password.Empty())
}

func TestField_NonStringScalar(t *testing.T) {
	var input domain.RegisterInput
	require.NoError(t, json.Unmarshal([]byte(`{"phone": 8976543659}`), &input))

	assert.Equal(t, "8976543659", input.Phone.String())
}

func TestField_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(domain.ResetLinkInput{Email: domain.Set("john@mail.com")})
	require.NoError(t, err)

	assert.JSONEq(t, `{"email":"john@mail.com","phone":null}`, string(data))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john@mail.com", domain.NormalizeEmail("  John@Mail.COM "))
}
