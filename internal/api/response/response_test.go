package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/auth-service/internal/api/response"
	"github.com/Rrens/auth-service/internal/apperror"
)

func render(t *testing.T, err error, dev bool) (*httptest.ResponseRecorder, response.ErrorBody) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	response.Error(rec, req, err, dev)

	var body response.ErrorBody
	if rec.Code != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

func TestError_Validation(t *testing.T) {
	rec, body := render(t, apperror.Validation(map[string]string{"email": "E-mail cannot be null"}), false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "validation errors", body.Message)
	require.NotNil(t, body.Errors)
	assert.Equal(t, map[string]string{"email": "E-mail cannot be null"}, body.Errors.ValidationErrors)
	assert.Empty(t, body.Stack)
}

func TestError_InternalHiddenOutsideDev(t *testing.T) {
	rec, body := render(t, apperror.Internal("Failed to send email", errors.New("smtp down")), false)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.GenericMessage, body.Message)
	assert.Empty(t, body.Stack)
}

func TestError_InternalShownInDev(t *testing.T) {
	_, body := render(t, apperror.Internal("Failed to send email", errors.New("smtp down")), true)

	assert.Equal(t, "Failed to send email", body.Message)
	assert.Empty(t, body.Stack, "stack is only exposed for operational errors")
}

func TestError_OperationalStackInDev(t *testing.T) {
	err := apperror.InvalidToken(errors.New("token is expired"))
	rec, body := render(t, err, true)

	assert.Equal(t, apperror.StatusInvalidToken, rec.Code)
	assert.Equal(t, err.Error(), body.Stack)
	assert.Contains(t, body.Stack, "token is expired")
}

func TestError_UnknownErrorIsGeneric(t *testing.T) {
	rec, body := render(t, errors.New("connection refused"), false)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.GenericMessage, body.Message)
}

func TestError_NoContent(t *testing.T) {
	rec, _ := render(t, apperror.NoContent(), false)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Success(rec, "Logout successful")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"message":"Logout successful"}`, rec.Body.String())
}
