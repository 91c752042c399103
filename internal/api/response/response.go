package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Rrens/auth-service/internal/apperror"
)

// Message is the body of most successful auth responses
type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorBody is the body of every failed request
type ErrorBody struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  *ErrorFields `json:"errors,omitempty"`
	// Stack is the error chain text, set in development mode only
	Stack string `json:"stack,omitempty"`
}

// ErrorFields carries per-field validation messages
type ErrorFields struct {
	ValidationErrors map[string]string `json:"validationErrors"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(data)
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response with data
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Success sends a 200 {success: true, message} response
func Success(w http.ResponseWriter, message string) {
	OK(w, Message{Success: true, Message: message})
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error logs err and renders it. Internal messages are replaced by a generic
// one unless dev is set. In dev mode operational errors also carry their
// error chain text as stack.
func Error(w http.ResponseWriter, r *http.Request, err error, dev bool) {
	appErr := apperror.From(err)

	logError(r, appErr)

	if appErr.Kind == apperror.KindNoContent {
		NoContent(w)
		return
	}

	body := ErrorBody{Message: appErr.Message}
	if !appErr.Operational() && !dev {
		body.Message = apperror.GenericMessage
	}
	if appErr.Kind == apperror.KindValidation {
		body.Errors = &ErrorFields{ValidationErrors: appErr.Fields}
	}
	if dev && appErr.Operational() {
		body.Stack = appErr.Error()
	}

	JSON(w, appErr.Status(), body)
}

func logError(r *http.Request, appErr *apperror.Error) {
	logger := zerolog.Ctx(r.Context())

	event := logger.Warn()
	if !appErr.Operational() {
		event = logger.Error()
	}

	event.
		Err(appErr.Err).
		Str("kind", appErr.Kind.String()).
		Int("status", appErr.Status()).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("origin", r.Header.Get("Origin")).
		Msg(appErr.Message)
}
