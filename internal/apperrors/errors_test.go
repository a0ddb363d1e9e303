package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", Invalid("bad %s", "input"), http.StatusUnprocessableEntity},
		{"wrapped unauthorized", fmt.Errorf("login: %w", Unauthorized("Unauthorized")), http.StatusUnauthorized},
		{"not found sentinel", fmt.Errorf("find: %w", ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestPublicMessageHidesUnknownErrors(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "title is required", PublicMessage(Invalid("title is required")))
}

func TestExtensionsCarryCode(t *testing.T) {
	err := Forbidden("not yours")
	assert.Equal(t, map[string]interface{}{"code": "FORBIDDEN"}, err.Extensions())
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("save failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save failed: disk full", err.Error())
}
