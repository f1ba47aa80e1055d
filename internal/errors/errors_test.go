package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeOf(NotFound("vendor", "v-1")))
	assert.Equal(t, ErrCodeInvalidInput, CodeOf(InvalidInput("email", "is required")))

	// Codes survive wrapping with %w.
	wrapped := stderrors.Join(stderrors.New("outer"), Unauthorized("no session"))
	assert.Equal(t, ErrCodeUnauthorized, CodeOf(wrapped))

	// Untyped errors default to internal.
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("boom")))
	assert.Equal(t, ErrCodeInternal, CodeOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Unauthorized("no session"), http.StatusUnauthorized},
		{InvalidInput("abn", "must be 11 digits"), http.StatusBadRequest},
		{InvalidTransition("cannot approve"), http.StatusConflict},
		{New(ErrCodeConflict, "stale version"), http.StatusConflict},
		{NotFound("vendor", "v-1"), http.StatusNotFound},
		{Remote(stderrors.New("timeout"), "warehouse query failed"), http.StatusBadGateway},
		{stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `not_found: vendor "v-1" not found`, NotFound("vendor", "v-1").Error())
	assert.Equal(t, "invalid_input: reason: decline reason is required",
		InvalidInput("reason", "decline reason is required").Error())

	cause := stderrors.New("connection refused")
	err := Remote(cause, "warehouse query failed")
	assert.Equal(t, "remote: warehouse query failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
